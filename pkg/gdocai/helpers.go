package gdocai

import (
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ToJSON converts various types to a JSON string
// It handles both protocol buffer messages and regular Go structs
func ToJSON(data interface{}) (string, error) {
	switch v := data.(type) {
	case proto.Message:
		jsonData, err := protojson.MarshalOptions{Multiline: true}.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(jsonData), nil

	default:
		jsonData, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(jsonData), nil
	}
}

// SaveDocumentJSON writes a Document AI response to path
func SaveDocumentJSON(doc *documentaipb.Document, path string) error {
	data, err := ToJSON(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// LoadDocumentJSON reads a Document AI response saved with SaveDocumentJSON
// or downloaded from the Document AI console
func LoadDocumentJSON(path string) (*documentaipb.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc documentaipb.Document
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", path, err)
	}
	return &doc, nil
}

// PageImage pulls out the image data from a Document AI page
func PageImage(doc *documentaipb.Document, i int) ([]byte, string, error) {
	if doc == nil || i < 0 || i >= len(doc.Pages) {
		return nil, "", fmt.Errorf("no documentai page %d provided", i+1)
	}

	image := doc.Pages[i].GetImage()
	if image == nil {
		return nil, "", fmt.Errorf("no image found in documentai page")
	}

	content := image.GetContent()
	if len(content) == 0 {
		return nil, "", fmt.Errorf("image content is empty")
	}

	return content, image.GetMimeType(), nil
}
