// Пакет generated — слой, сгенерированный oapi-codegen из api/openapi.yaml.
// Регенерация: go generate ./internal/api/generated/...
package generated

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen --config=oapi-codegen.yaml ../../../api/openapi.yaml
