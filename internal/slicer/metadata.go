package slicer

import (
	"github.com/kolah/oaslice/internal/model"
	"go.yaml.in/yaml/v4"
)

// Metadata is the boilerplate stamped onto every extracted document.
type Metadata struct {
	OpenAPI  string
	Contact  Contact
	Server   Server
	Security SecurityScheme
}

type Contact struct {
	Name string
	URL  string
}

type Server struct {
	URL         string
	Description string
}

// SecurityScheme describes the single HTTP bearer scheme required globally.
type SecurityScheme struct {
	Name         string
	BearerFormat string
	Description  string
}

func DefaultMetadata() Metadata {
	return Metadata{
		OpenAPI: "3.0.3",
		Contact: Contact{
			Name: "CloudBees",
			URL:  "https://www.cloudbees.com",
		},
		Server: Server{
			URL:         "https://api.cloudbees.io",
			Description: "CloudBees Platform",
		},
		Security: SecurityScheme{
			Name:         "BearerAuth",
			BearerFormat: "JWT",
			Description:  "OIDC token or Personal Access Token (PAT)",
		},
	}
}

// withDefaults fills every empty field from DefaultMetadata.
func (m Metadata) withDefaults() Metadata {
	d := DefaultMetadata()
	if m.OpenAPI == "" {
		m.OpenAPI = d.OpenAPI
	}
	if m.Contact.Name == "" {
		m.Contact.Name = d.Contact.Name
	}
	if m.Contact.URL == "" {
		m.Contact.URL = d.Contact.URL
	}
	if m.Server.URL == "" {
		m.Server.URL = d.Server.URL
	}
	if m.Server.Description == "" {
		m.Server.Description = d.Server.Description
	}
	if m.Security.Name == "" {
		m.Security.Name = d.Security.Name
	}
	if m.Security.BearerFormat == "" {
		m.Security.BearerFormat = d.Security.BearerFormat
	}
	if m.Security.Description == "" {
		m.Security.Description = d.Security.Description
	}
	return m
}

func (o Options) infoNode(meta Metadata) *yaml.Node {
	contact := model.NewMapping()
	model.SetString(contact, "name", meta.Contact.Name)
	model.SetString(contact, "url", meta.Contact.URL)

	info := model.NewMapping()
	model.SetString(info, "title", o.Title)
	model.SetString(info, "description", o.Description)
	model.SetString(info, "version", o.Version)
	model.Set(info, "contact", contact)
	return info
}

func serversNode(meta Metadata) *yaml.Node {
	server := model.NewMapping()
	model.SetString(server, "url", meta.Server.URL)
	model.SetString(server, "description", meta.Server.Description)
	return model.NewSequence(server)
}

func securityNode(meta Metadata) *yaml.Node {
	requirement := model.NewMapping()
	model.Set(requirement, meta.Security.Name, model.NewSequence())
	return model.NewSequence(requirement)
}

func securitySchemesNode(meta Metadata) *yaml.Node {
	scheme := model.NewMapping()
	model.SetString(scheme, "type", "http")
	model.SetString(scheme, "scheme", "bearer")
	model.SetString(scheme, "bearerFormat", meta.Security.BearerFormat)
	model.SetString(scheme, "description", meta.Security.Description)

	schemes := model.NewMapping()
	model.Set(schemes, meta.Security.Name, scheme)
	return schemes
}
