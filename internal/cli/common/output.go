package common

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/rajithacharith/thunder-sub007/internal/cli/commandmeta"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

const (
	OutputAuto = "auto"
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

func ValidateOutputFormat(format string) error {
	switch format {
	case OutputAuto, OutputText, OutputJSON, OutputYAML:
		return nil
	default:
		return ValidationError("invalid output format: use auto, text, json, or yaml", nil)
	}
}

func ValidateOutputFormatForCommandPath(commandPath string, format string) error {
	switch strings.TrimSpace(format) {
	case "", OutputAuto, OutputText:
		return nil
	}

	switch commandmeta.OutputPolicyForPath(commandPath) {
	case commandmeta.OutputPolicyTextOnly:
		return ValidationError("command supports only text output; use --output text or --output auto", nil)
	case commandmeta.OutputPolicyYAMLOrText:
		if strings.TrimSpace(format) == OutputYAML {
			return nil
		}
		return ValidationError("command supports only yaml or text output; use --output yaml, text, or auto", nil)
	default:
		return nil
	}
}

// WriteOutput renders value in the requested format. Text formats use
// renderText when given and fmt's default formatting otherwise.
func WriteOutput[T any](command *cobra.Command, format string, value T, renderText func(io.Writer, T) error) error {
	if isNilOutputValue(value) {
		return nil
	}

	out := command.OutOrStdout()
	switch format {
	case "", OutputAuto, OutputText:
		if renderText == nil {
			_, err := fmt.Fprintln(out, value)
			return err
		}
		return renderText(out, value)
	case OutputJSON, OutputYAML:
		encoded, err := encodeStructured(format, value)
		if err != nil {
			return err
		}
		_, err = out.Write(encoded)
		return err
	default:
		return ValidationError("invalid output format: use auto, text, json, or yaml", nil)
	}
}

// WriteText prints a one-line message; structured formats wrap it as
// {"message": text}.
func WriteText(command *cobra.Command, format string, text string) error {
	switch format {
	case OutputJSON, OutputYAML:
		return WriteOutput(command, format, map[string]string{"message": text}, nil)
	default:
		_, err := fmt.Fprintln(command.OutOrStdout(), text)
		return err
	}
}

func encodeStructured(format string, value any) ([]byte, error) {
	if format == OutputYAML {
		return yaml.Marshal(value)
	}
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}

func isNilOutputValue[T any](value T) bool {
	anyValue := any(value)
	if anyValue == nil {
		return true
	}

	reflected := reflect.ValueOf(anyValue)
	switch reflected.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return reflected.IsNil()
	default:
		return false
	}
}
