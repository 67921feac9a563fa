package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/gaspardpetit/tasksplit/internal/logx"
)

// Component schema names.
const (
	schemaGenerateRequest  = "GenerateRequest"
	schemaGenerateResponse = "GenerateResponse"
	schemaError            = "ErrorResponse"
)

func schemaRef(name string, s *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, s)
}

// Schemas returns the JSON schemas of the proxy endpoint bodies.
func Schemas() openapi3.Schemas {
	req := openapi3.NewObjectSchema().
		WithProperty("goal", openapi3.NewStringSchema()).
		WithProperty("prompt", openapi3.NewStringSchema())
	req.Description = "At least one of goal or prompt must be non-blank."

	resp := openapi3.NewObjectSchema().
		WithProperty("text", openapi3.NewStringSchema()).
		WithProperty("tasks", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	resp.Required = []string{"text", "tasks"}

	errSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewStringSchema())
	errSchema.Required = []string{"error"}

	return openapi3.Schemas{
		schemaGenerateRequest:  openapi3.NewSchemaRef("", req),
		schemaGenerateResponse: openapi3.NewSchemaRef("", resp),
		schemaError:            openapi3.NewSchemaRef("", errSchema),
	}
}

// OpenAPIDoc describes the public HTTP surface.
func OpenAPIDoc(version string) *openapi3.T {
	schemas := Schemas()
	errResp := func(desc string) *openapi3.Response {
		return openapi3.NewResponse().WithDescription(desc).
			WithJSONSchemaRef(schemaRef(schemaError, schemas[schemaError].Value))
	}

	generate := openapi3.NewOperation()
	generate.OperationID = "generateTasks"
	generate.Summary = "Break a goal into tasks or run a raw prompt"
	generate.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchemaRef(schemaRef(schemaGenerateRequest, schemas[schemaGenerateRequest].Value))}
	generate.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Generated text").
			WithJSONSchemaRef(schemaRef(schemaGenerateResponse, schemas[schemaGenerateResponse].Value))}),
		openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{Value: errResp("Neither goal nor prompt given")}),
		openapi3.WithStatus(http.StatusInternalServerError, &openapi3.ResponseRef{Value: errResp("Missing API key or unexpected failure")}),
		openapi3.WithName("default", errResp("Upstream error relayed with the upstream status")),
	)

	health := openapi3.NewOperation()
	health.OperationID = "getHealthz"
	health.Summary = "Health check"
	health.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Ready")}),
		openapi3.WithStatus(http.StatusServiceUnavailable, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Not ready or draining")}),
	)

	doc := &openapi3.T{
		OpenAPI:    "3.0.3",
		Info:       &openapi3.Info{Title: "tasksplit API", Version: version},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: schemas},
	}
	doc.AddOperation("/api/gemini", http.MethodPost, generate)
	doc.AddOperation("/healthz", http.MethodGet, health)
	return doc
}

// OpenAPIHandler serves the OpenAPI document as JSON.
func OpenAPIHandler(version string) http.HandlerFunc {
	var (
		once sync.Once
		body []byte
		err  error
	)
	return func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			body, err = json.Marshal(OpenAPIDoc(version))
		})
		if err != nil {
			logx.Log.Error().Err(err).Msg("marshal openapi")
			http.Error(w, "openapi unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(body); err != nil {
			logx.Log.Error().Err(err).Msg("write openapi")
		}
	}
}
