package openapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firstaid/firstaid/internal/triage"
)

// Generator builds the OpenAPI 3.0 document for the public API.
type Generator struct {
	version string
	baseURL string
	admin   bool
}

// NewGenerator creates a Generator. When admin is true the incident log
// endpoints are included.
func NewGenerator(version, baseURL string, admin bool) *Generator {
	return &Generator{version: version, baseURL: baseURL, admin: admin}
}

// GenerateSpec produces the OpenAPI document as a map.
func (g *Generator) GenerateSpec() map[string]interface{} {
	paths := map[string]interface{}{
		"/api/emergency-response": map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     "Classify an emergency description and return first-aid guidance",
				"operationId": "emergencyResponse",
				"tags":        []string{"triage"},
				"requestBody": map[string]interface{}{
					"required": true,
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": ref("EmergencyRequest"),
						},
					},
				},
				"responses": map[string]interface{}{
					"200": jsonResponse("Guidance for the detected emergency", ref("EmergencyResult"), true),
					"400": jsonResponse("Invalid body or empty message", ref("Error"), false),
					"500": jsonResponse("Classifier failure", ref("Error"), false),
				},
			},
		},
		"/api/nearby-hospitals": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "List hospitals near a coordinate",
				"operationId": "nearbyHospitals",
				"tags":        []string{"hospitals"},
				"parameters": []map[string]interface{}{
					queryParam("lat", "Latitude in decimal degrees", true),
					queryParam("long", "Longitude in decimal degrees", true),
				},
				"responses": map[string]interface{}{
					"200": jsonResponse("Nearby hospitals", map[string]interface{}{
						"type":  "array",
						"items": ref("Hospital"),
					}, true),
					"400": jsonResponse("Missing or invalid coordinates", ref("Error"), false),
					"500": jsonResponse("Upstream search failure", ref("Error"), false),
				},
			},
		},
		"/health": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Liveness and dependency status",
				"operationId": "health",
				"tags":        []string{"ops"},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{"description": "Service is up"},
				},
			},
		},
	}

	if g.admin {
		bearer := []map[string][]string{{"bearerAuth": {}}}
		paths["/api/admin/incidents"] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "List recorded classifications",
				"operationId": "listIncidents",
				"tags":        []string{"admin"},
				"security":    bearer,
				"parameters": []map[string]interface{}{
					queryParam("type", "Filter by emergency type", false),
					queryParam("since", "RFC 3339 lower bound on created_at", false),
					queryParam("until", "RFC 3339 upper bound on created_at", false),
					intParam("limit"),
					intParam("offset"),
				},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{"description": "Paginated incidents"},
					"401": jsonResponse("Missing or invalid token", ref("Error"), false),
					"403": jsonResponse("Token lacks the admin role", ref("Error"), false),
				},
			},
		}
		paths["/api/admin/incidents/stats"] = map[string]interface{}{
			"get": map[string]interface{}{
				"summary":     "Count recorded classifications by emergency type",
				"operationId": "incidentStats",
				"tags":        []string{"admin"},
				"security":    bearer,
				"responses": map[string]interface{}{
					"200": map[string]interface{}{"description": "Counts per type"},
				},
			},
		}
	}

	components := map[string]interface{}{
		"schemas": buildSchemas(),
	}
	if g.admin {
		components["securitySchemes"] = map[string]interface{}{
			"bearerAuth": map[string]interface{}{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
		}
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "First-aid triage API",
			"version":     g.version,
			"description": triage.Disclaimer,
		},
		"servers":    []map[string]string{{"url": g.baseURL}},
		"paths":      paths,
		"components": components,
	}
}

func ref(name string) map[string]string {
	return map[string]string{"$ref": "#/components/schemas/" + name}
}

func jsonResponse(description string, schema interface{}, cacheHeader bool) map[string]interface{} {
	r := map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
	if cacheHeader {
		r["headers"] = map[string]interface{}{
			"X-Cache": map[string]interface{}{
				"description": "HIT when served from the cache, MISS otherwise",
				"schema":      map[string]interface{}{"type": "string", "enum": []string{"HIT", "MISS"}},
			},
		}
	}
	return r
}

func queryParam(name, description string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"required":    required,
		"description": description,
		"schema":      map[string]string{"type": "string"},
	}
}

func intParam(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":   name,
		"in":     "query",
		"schema": map[string]interface{}{"type": "integer", "minimum": 0},
	}
}

func buildSchemas() map[string]interface{} {
	types := []string{}
	for _, c := range triage.Categories() {
		types = append(types, string(c))
	}
	types = append(types, string(triage.CategoryUnknown))

	stringList := map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}}

	return map[string]interface{}{
		"EmergencyRequest": map[string]interface{}{
			"type":     "object",
			"required": []string{"message"},
			"properties": map[string]interface{}{
				"message": map[string]string{"type": "string"},
			},
		},
		"Remedy": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"steps":    stringList,
				"warnings": stringList,
				"call_911": map[string]string{"type": "string"},
			},
		},
		"EmergencyResult": map[string]interface{}{
			"type":     "object",
			"required": []string{"emergency_type", "confidence", "disclaimer"},
			"properties": map[string]interface{}{
				"emergency_type": map[string]interface{}{"type": "string", "enum": types},
				"confidence":     map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
				"remedy":         ref("Remedy"),
				"message":        map[string]string{"type": "string"},
				"general_advice": map[string]string{"type": "string"},
				"disclaimer":     map[string]string{"type": "string"},
			},
		},
		"Hospital": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name":    map[string]string{"type": "string"},
				"address": map[string]string{"type": "string"},
				"rating":  map[string]interface{}{"type": "number", "nullable": true},
				"location": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"lat": map[string]string{"type": "number"},
						"lng": map[string]string{"type": "number"},
					},
				},
			},
		},
		"Error": map[string]interface{}{
			"type":     "object",
			"required": []string{"error"},
			"properties": map[string]interface{}{
				"error": map[string]string{"type": "string"},
			},
		},
	}
}

// RegisterRoutes serves the document at /openapi.json.
func (g *Generator) RegisterRoutes(e *echo.Echo) {
	spec := g.GenerateSpec()
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, spec)
	})
}
