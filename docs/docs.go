// Package docs Residential History Map API.
//
// Карта жилья Бухареста по годам 1989-2017: точки дом/квартира, статистика по году,
// HTML страница со слайдером лет.
//
// Keep in sync with the godoc annotations in internal/delivery/http/handler.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/admin/reload": {
            "post": {
                "description": "Перечитывает исходные таблицы и заменяет мемоизированный результат. 409 если мемоизация выключена.",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Reload source tables",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.SuccessResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/dto.ReloadResponse"}}}
                            ]
                        }
                    },
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/health": {
            "get": {
                "description": "Состояние сервиса и зависимостей (postgres, redis). Отключённая зависимость не делает сервис нездоровым.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/map": {
            "get": {
                "description": "Строит представление карты за год: центр, границы, маркеры (зелёный - дом, синий - квартира) и легенду",
                "produces": ["application/json"],
                "tags": ["Map"],
                "summary": "Get the map view for a year",
                "parameters": [
                    {"type": "integer", "default": 2000, "description": "Год 1989-2017", "name": "year", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.SuccessResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/domain.MapView"}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/points": {
            "get": {
                "description": "Возвращает точки (id, координаты, тип жилья) за год в порядке конвейера. format=csv отдаёт CSV.",
                "produces": ["application/json", "text/csv"],
                "tags": ["Map"],
                "summary": "Get residential points for a year",
                "parameters": [
                    {"type": "integer", "default": 2000, "description": "Год 1989-2017", "name": "year", "in": "query"},
                    {"type": "string", "default": "json", "description": "json или csv", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.SuccessResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/dto.PointsResponse"}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/stats": {
            "get": {
                "description": "Количество точек по типам жилья, счётчики отброшенных строк конвейера и покрытие bounding box",
                "produces": ["application/json"],
                "tags": ["Map"],
                "summary": "Get per-year statistics",
                "parameters": [
                    {"type": "integer", "default": 2000, "description": "Год 1989-2017", "name": "year", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.SuccessResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/domain.YearStats"}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/years": {
            "get": {
                "description": "Параметры слайдера: 1989-2017, шаг 1, год по умолчанию",
                "produces": ["application/json"],
                "tags": ["Map"],
                "summary": "Get the selectable year range",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/utils.SuccessResponse"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/dto.YearsResponse"}}}
                            ]
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.BoundingBox": {
            "type": "object",
            "properties": {
                "max_lat": {"type": "number"},
                "max_lon": {"type": "number"},
                "min_lat": {"type": "number"},
                "min_lon": {"type": "number"}
            }
        },
        "domain.CoverageStats": {
            "type": "object",
            "properties": {
                "area_sq_km": {"type": "number"},
                "bbox_max_lat": {"type": "number"},
                "bbox_max_lon": {"type": "number"},
                "bbox_min_lat": {"type": "number"},
                "bbox_min_lon": {"type": "number"},
                "center_lat": {"type": "number"},
                "center_lon": {"type": "number"}
            }
        },
        "domain.DatasetSummary": {
            "type": "object",
            "properties": {
                "coordinate_columns": {"type": "integer"},
                "coordinate_rows": {"type": "integer"},
                "loaded_at": {"type": "string"},
                "source": {"type": "string"},
                "trajectory_rows": {"type": "integer"},
                "trajectory_years": {"type": "integer"}
            }
        },
        "domain.GeoPoint": {
            "type": "object",
            "properties": {
                "category": {"type": "integer", "enum": [1, 2]},
                "id": {"type": "string"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "year": {"type": "integer"}
            }
        },
        "domain.Legend": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/domain.LegendEntry"}},
                "title": {"type": "string"}
            }
        },
        "domain.LegendEntry": {
            "type": "object",
            "properties": {
                "color": {"type": "string"},
                "icon": {"type": "string"},
                "label": {"type": "string"}
            }
        },
        "domain.MapView": {
            "type": "object",
            "properties": {
                "bounds": {"$ref": "#/definitions/domain.BoundingBox"},
                "center": {"$ref": "#/definitions/domain.Point"},
                "legend": {"$ref": "#/definitions/domain.Legend"},
                "markers": {"type": "array", "items": {"$ref": "#/definitions/domain.Marker"}},
                "year": {"type": "integer"},
                "zoom": {"type": "integer"}
            }
        },
        "domain.Marker": {
            "type": "object",
            "properties": {
                "category": {"type": "integer"},
                "color": {"type": "string"},
                "fill_color": {"type": "string"},
                "fill_opacity": {"type": "number"},
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "radius": {"type": "number"},
                "tooltip": {"type": "string"}
            }
        },
        "domain.PipelineStats": {
            "type": "object",
            "properties": {
                "candidates": {"type": "integer"},
                "coerced_categories": {"type": "integer"},
                "dropped_category": {"type": "integer"},
                "dropped_null_coords": {"type": "integer"},
                "dropped_outside_bbox": {"type": "integer"},
                "dropped_year_labels": {"type": "integer"},
                "joined": {"type": "integer"},
                "points": {"type": "integer"},
                "trajectory_rows": {"type": "integer"},
                "year": {"type": "integer"}
            }
        },
        "domain.Point": {
            "type": "object",
            "properties": {
                "lat": {"type": "number"},
                "lon": {"type": "number"}
            }
        },
        "domain.YearStats": {
            "type": "object",
            "properties": {
                "by_category": {"type": "object", "additionalProperties": {"type": "integer"}},
                "coverage": {"$ref": "#/definitions/domain.CoverageStats"},
                "dataset": {"$ref": "#/definitions/domain.DatasetSummary"},
                "pipeline": {"$ref": "#/definitions/domain.PipelineStats"},
                "total": {"type": "integer"},
                "year": {"type": "integer"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string"},
                "time": {"type": "string"}
            }
        },
        "dto.PointsResponse": {
            "type": "object",
            "properties": {
                "points": {"type": "array", "items": {"$ref": "#/definitions/domain.GeoPoint"}},
                "total": {"type": "integer"},
                "year": {"type": "integer"}
            }
        },
        "dto.ReloadResponse": {
            "type": "object",
            "properties": {
                "dataset": {"$ref": "#/definitions/domain.DatasetSummary"}
            }
        },
        "dto.YearsResponse": {
            "type": "object",
            "properties": {
                "default": {"type": "integer"},
                "max": {"type": "integer"},
                "min": {"type": "integer"},
                "step": {"type": "integer"}
            }
        },
        "errors.AppError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true},
                "message": {"type": "string"}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/errors.AppError"}
            }
        },
        "utils.Meta": {
            "type": "object",
            "properties": {
                "time_ms": {"type": "number"},
                "total": {"type": "integer"},
                "year": {"type": "integer"}
            }
        },
        "utils.SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "meta": {"$ref": "#/definitions/utils.Meta"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Residential History Map API",
	Description:      "Карта жилья Бухареста по годам: точки дом/квартира, статистика по году и страница со слайдером лет.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
