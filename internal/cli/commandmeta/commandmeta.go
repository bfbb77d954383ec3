package commandmeta

import "strings"

type OutputPolicy uint8

const (
	OutputPolicyStructured OutputPolicy = iota
	OutputPolicyTextOnly
	OutputPolicyYAMLOrText
)

func EmitsExecutionStatusPath(path string) bool {
	switch strings.TrimSpace(path) {
	case "thunder-store resource create",
		"thunder-store resource update",
		"thunder-store resource delete":
		return true
	default:
		return false
	}
}

func OutputPolicyForPath(path string) OutputPolicy {
	switch strings.TrimSpace(path) {
	case "thunder-store config show":
		return OutputPolicyYAMLOrText
	case "thunder-store serve",
		"thunder-store completion bash",
		"thunder-store completion zsh",
		"thunder-store completion fish",
		"thunder-store completion powershell":
		return OutputPolicyTextOnly
	default:
		return OutputPolicyStructured
	}
}
