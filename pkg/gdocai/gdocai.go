// Package gdocai provides the Google Document AI side of table reconstruction.
//
// It sends page images or PDFs to a Document AI OCR processor and turns the
// tokens of the response into layout fragments. Responses can be saved as
// JSON and loaded again, so an image only has to be sent once while the
// reconstruction settings are tuned.
//
// Main Functions:
//
// - ProcessDocument: sends a document to Google Document AI for processing
// - PageFragments: converts the tokens of one page into fragments
// - LoadDocumentJSON, SaveDocumentJSON: read and write saved responses
// - PageImage: the rendered page image returned by Document AI
//
// Usage Requirements:
//
// - Google Cloud project with Document AI API enabled
// - Document AI processor configured for OCR
// - A service account key file named in Config.CredentialsFile, or
// application default credentials when it is empty
package gdocai

import (
	"errors"
	"fmt"
)

// Config identifies the processor and the credentials used to call it.
// An empty CredentialsFile uses application default credentials.
type Config struct {
	ProjectID       string `yaml:"project_id"`
	Location        string `yaml:"location"`
	ProcessorID     string `yaml:"processor_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Validate reports the first missing field
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("document AI config is missing")
	}
	switch {
	case c.ProjectID == "":
		return errors.New("document AI project_id is required")
	case c.Location == "":
		return errors.New("document AI location is required")
	case c.ProcessorID == "":
		return errors.New("document AI processor_id is required")
	}
	return nil
}

// Endpoint returns the regional API endpoint
func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s-documentai.googleapis.com:443", c.Location)
}

// ProcessorName returns the full resource name of the processor
func (c *Config) ProcessorName() string {
	return fmt.Sprintf(
		"projects/%s/locations/%s/processors/%s",
		c.ProjectID, c.Location, c.ProcessorID,
	)
}
