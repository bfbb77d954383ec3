package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/rajithacharith/thunder-sub007/resource"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

const (
	stdinFileIndicator  = "-"
	MissingInputMessage = "input is required: provide --payload <path|-> or stdin"
	maxInputBytes       = 4 << 20
)

func ReadInput(command *cobra.Command, flags InputFlags) ([]byte, error) {
	if flags.Payload != "" && flags.Payload != stdinFileIndicator {
		file, err := os.Open(flags.Payload)
		if err != nil {
			return nil, ValidationError("cannot open payload file", err)
		}
		defer file.Close()

		data, err := readAllWithLimit(file, maxInputBytes)
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, ValidationError("input is empty", nil)
		}
		return data, nil
	}

	inputReader := command.InOrStdin()
	if stdinFile, ok := inputReader.(*os.File); ok {
		info, err := stdinFile.Stat()
		if err == nil && (info.Mode()&os.ModeCharDevice) != 0 {
			return nil, ValidationError(MissingInputMessage, nil)
		}
	}

	data, err := readAllWithLimit(inputReader, maxInputBytes)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ValidationError(MissingInputMessage, nil)
	}
	return data, nil
}

func DecodeInputData[T any](data []byte, format string) (T, error) {
	var output T

	switch format {
	case OutputJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&output); err != nil {
			return output, ValidationError("invalid json input", err)
		}
	case "", OutputYAML:
		if err := yaml.Unmarshal(data, &output); err != nil {
			return output, ValidationError("invalid yaml input", err)
		}
	default:
		return output, ValidationError("invalid input format: use json or yaml", nil)
	}

	return output, nil
}

// DecodeResource reads a resource document: a mapping whose reserved keys
// (id, type, source, revision) address the record and whose remaining keys
// are its attributes.
func DecodeResource(command *cobra.Command, flags InputFlags) (resource.Resource, error) {
	data, err := ReadInput(command, flags)
	if err != nil {
		return resource.Resource{}, err
	}

	document, err := DecodeInputData[map[string]any](data, flags.Format)
	if err != nil {
		return resource.Resource{}, err
	}
	if document == nil {
		return resource.Resource{}, ValidationError("resource payload must be an object", nil)
	}

	id, resourceType, attributes := resource.FromDocument(document)
	normalized, err := resource.NormalizeAttributes(attributes)
	if err != nil {
		return resource.Resource{}, err
	}

	value := resource.Resource{ID: id, Type: resourceType, Attributes: normalized}
	if revision, ok := document["revision"].(string); ok {
		value.Revision = revision
	}
	return value, nil
}

func readAllWithLimit(reader io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ValidationError("input exceeds maximum supported size", errors.New("input too large"))
	}
	return data, nil
}
