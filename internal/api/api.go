// Package api embeds the OpenAPI contract and validates JSON requests against it.
package api

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/AdamBeresnev/koe-contest/internal/httputil"
)

//go:embed openapi.yaml
var specYAML []byte

// Load parses and validates the embedded contract.
func Load() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return spec, nil
}

// Validator rejects requests that do not match an operation of spec. Mount it only on routes the document describes.
func Validator(spec *openapi3.T) func(http.Handler) http.Handler {
	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: requireBearer,
		},
		ErrorHandler:          writeValidationProblem,
		SilenceServersWarning: true,
	})
}

// Handler serves the contract as JSON.
func Handler(spec *openapi3.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, spec)
	}
}

// requireBearer only checks the header shape; token and role checks happen in the auth middleware.
func requireBearer(_ context.Context, input *openapi3filter.AuthenticationInput) error {
	if input == nil || input.SecuritySchemeName != "bearerAuth" {
		return nil
	}
	r := input.RequestValidationInput.Request
	if r == nil {
		return errors.New("no request in validation input")
	}
	authz := r.Header.Get("Authorization")
	if len(authz) < len("bearer ") || !strings.EqualFold(authz[:len("bearer ")], "bearer ") {
		return errors.New("missing or invalid Authorization header")
	}
	return nil
}

func writeValidationProblem(w http.ResponseWriter, message string, statusCode int) {
	title := http.StatusText(statusCode)
	switch statusCode {
	case http.StatusBadRequest:
		title = "Validation failed"
	case http.StatusUnauthorized:
		title = "Unauthorized"
		message = "invalid credentials"
	case http.StatusNotFound:
		title = "Resource not found"
	}
	httputil.WriteProblem(w, httputil.Problem{Title: title, Status: statusCode, Detail: message})
}
