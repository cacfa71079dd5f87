package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Talent Evaluation API",
        "description": "AI-driven candidate evaluation engine and assessment platform connectors",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Analyses", "description": "Candidate analysis versioning"},
        {"name": "Assessments", "description": "AI assessment operations"},
        {"name": "Connectors", "description": "External assessment platform connectors"},
        {"name": "Webhooks", "description": "Inbound platform callbacks"}
    ],
    "paths": {
        "/candidates/{id}/analyses": {
            "get": {
                "tags": ["Analyses"],
                "summary": "List analysis versions, newest first",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Analyses"],
                "summary": "Generate a new analysis version",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateAnalysisRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/candidates/{id}/analyses/latest": {
            "get": {
                "tags": ["Analyses"],
                "summary": "Get the current analysis version",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/candidates/{id}/analyses/tab-summary": {
            "post": {
                "tags": ["Analyses"],
                "summary": "Generate a short summary for one profile tab",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TabSummaryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/candidates/{id}/analyses/export": {
            "get": {
                "tags": ["Analyses"],
                "summary": "Export analysis history as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV payload"}
                }
            }
        },
        "/candidates/{id}/predict-performance": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Predict on-the-job performance",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assessments/questions/generate": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Generate assessment questions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateQuestionsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assessments/responses/grade": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Grade candidate responses",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeResponsesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assessments/{id}/analyze": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Analyze a completed assessment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assessments/{id}/team-fit": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Compare a personality assessment against a team profile",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeamFitRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/connectors": {
            "get": {
                "tags": ["Connectors"],
                "summary": "List registered connectors",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/connectors/{name}": {
            "get": {
                "tags": ["Connectors"],
                "summary": "Describe one connector",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/connectors/{name}/test": {
            "post": {
                "tags": ["Connectors"],
                "summary": "Probe platform connectivity",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/connectors/{name}/invites": {
            "post": {
                "tags": ["Connectors"],
                "summary": "Send an assessment invitation",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendInviteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/connectors/{name}/results/{externalId}": {
            "get": {
                "tags": ["Connectors"],
                "summary": "Pull current results for a tracked invitation",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "externalId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/connectors/{name}/invites/{externalId}": {
            "delete": {
                "tags": ["Connectors"],
                "summary": "Cancel a tracked invitation",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "externalId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/webhooks/{connector}": {
            "post": {
                "tags": ["Webhooks"],
                "summary": "Receive a webhook delivery",
                "parameters": [
                    {"name": "connector", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unparseable payload"},
                    "401": {"description": "Invalid signature"},
                    "404": {"description": "Unknown connector or assessment"}
                }
            }
        }
    },
    "definitions": {
        "GenerateAnalysisRequest": {
            "type": "object",
            "properties": {
                "analysis_type": {"type": "string"},
                "trigger": {"type": "object"},
                "async": {"type": "boolean"}
            },
            "required": ["analysis_type"]
        },
        "TabSummaryRequest": {
            "type": "object",
            "properties": {
                "tab": {"type": "string", "enum": ["overview", "interviews", "assessments", "timeline"]}
            },
            "required": ["tab"]
        },
        "GenerateQuestionsRequest": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "type": {"type": "string"},
                "count": {"type": "integer"},
                "difficulty_mix": {"type": "object"}
            },
            "required": ["job_id", "type", "count"]
        },
        "GradeResponsesRequest": {
            "type": "object",
            "properties": {
                "pairs": {"type": "array", "items": {"type": "object"}}
            },
            "required": ["pairs"]
        },
        "TeamFitRequest": {
            "type": "object",
            "properties": {
                "team_profile": {"type": "object"}
            },
            "required": ["team_profile"]
        },
        "SendInviteRequest": {
            "type": "object",
            "properties": {
                "assessment_id": {"type": "string"},
                "deadline": {"type": "string"}
            },
            "required": ["assessment_id"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
