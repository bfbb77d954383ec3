package store

import (
	"time"

	"github.com/rajithacharith/thunder-sub007/config"
)

// SnapshotSummary describes the declarative snapshot an engine is serving.
type SnapshotSummary struct {
	BaseDir     string        `json:"baseDir" yaml:"baseDir"`
	Digest      string        `json:"digest" yaml:"digest"`
	LoadedAt    time.Time     `json:"loadedAt" yaml:"loadedAt"`
	Types       []TypeSummary `json:"types" yaml:"types"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

type TypeSummary struct {
	Type      string           `json:"type" yaml:"type"`
	Mode      config.StoreMode `json:"mode" yaml:"mode"`
	Resources int              `json:"resources" yaml:"resources"`
	Skipped   int              `json:"skipped" yaml:"skipped"`
}
