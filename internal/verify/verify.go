// Package verify checks that an extracted document stands on its own as an
// OpenAPI 3 description.
package verify

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	validator "github.com/pb33f/libopenapi-validator"
	validatorErrors "github.com/pb33f/libopenapi-validator/errors"
)

var ErrUnsupportedVersion = errors.New("unsupported OpenAPI version")

type Report struct {
	Version string
	Paths   int
	Schemas int
	Issues  []string
}

func (r *Report) Valid() bool {
	return len(r.Issues) == 0
}

// Document parses data, builds the v3 model (which resolves every local
// reference) and validates the document against the OpenAPI schema.
// Problems with the document are returned as Issues, not as an error.
// External references are never followed.
func Document(data []byte, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	config := &datamodel.DocumentConfiguration{
		AllowFileReferences:   false,
		AllowRemoteReferences: false,
		Logger:                logger,
	}

	doc, err := libopenapi.NewDocumentWithConfiguration(data, config)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("%w: %s (only 3.x supported)", ErrUnsupportedVersion, version)
	}

	report := &Report{Version: version}

	model, err := doc.BuildV3Model()
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("building model: %s", err))
	}
	if model != nil {
		if model.Model.Paths != nil && model.Model.Paths.PathItems != nil {
			report.Paths = model.Model.Paths.PathItems.Len()
		}
		if model.Model.Components != nil && model.Model.Components.Schemas != nil {
			report.Schemas = model.Model.Components.Schemas.Len()
		}
	}

	v, errs := validator.NewValidator(doc)
	if len(errs) > 0 {
		for _, e := range errs {
			report.Issues = append(report.Issues, fmt.Sprintf("creating validator: %s", e))
		}
		return report, nil
	}

	if valid, verrs := v.ValidateDocument(); !valid {
		for _, ve := range verrs {
			report.Issues = append(report.Issues, formatIssue(ve))
		}
	}

	return report, nil
}

func formatIssue(ve *validatorErrors.ValidationError) string {
	if ve.Reason == "" || ve.Reason == ve.Message {
		return ve.Message
	}
	return ve.Message + ": " + ve.Reason
}
