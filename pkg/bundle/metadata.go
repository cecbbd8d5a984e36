package bundle

import (
	"github.com/google/uuid"

	"github.com/yoelcortes/setupforge/pkg/manifest"
)

// Paths of the metadata segment inside the artifact. The segment is written
// before any payload entry so installers can stream the header.
const (
	MetadataPath = ".setup/metadata.json"
	ActionsPath  = ".setup/actions.xml"
	PlanPath     = ".setup/plan.json"
	PayloadRoot  = "payload"
)

// Metadata is the JSON document embedded at MetadataPath. Field order is
// fixed by the struct so artifacts are reproducible.
type Metadata struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Version            string    `json:"version"`
	Publisher          string    `json:"publisher,omitempty"`
	PublisherURL       string    `json:"publisherURL,omitempty"`
	SupportURL         string    `json:"supportURL,omitempty"`
	UpdatesURL         string    `json:"updatesURL,omitempty"`
	DefaultDirName     string    `json:"defaultDirName,omitempty"`
	DefaultGroupName   string    `json:"defaultGroupName,omitempty"`
	PrivilegesRequired string    `json:"privilegesRequired,omitempty"`
	Compression        string    `json:"compression"`
}

// NewMetadata converts the parsed [Setup] block to its embedded form
func NewMetadata(m manifest.Metadata) Metadata {
	return Metadata{
		ID:                 m.AppID,
		Name:               m.Name,
		Version:            m.Version,
		Publisher:          m.Publisher,
		PublisherURL:       m.PublisherURL,
		SupportURL:         m.SupportURL,
		UpdatesURL:         m.UpdatesURL,
		DefaultDirName:     m.DefaultDirName,
		DefaultGroupName:   m.DefaultGroupName,
		PrivilegesRequired: m.PrivilegesRequired,
		Compression:        m.Compression.String(),
	}
}
