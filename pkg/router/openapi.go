package router

import (
	"path/filepath"

	"ice-breakun/backend/pkg/validator"
)

// AddOpenAPIValidation validates request bodies against the schema and serves
// it under /api/docs. It must be called before SetupRoutes.
func (r *Router) AddOpenAPIValidation(schemaPath string) error {
	v, err := validator.NewOpenAPIValidator(schemaPath)
	if err != nil {
		return err
	}

	r.Engine.Use(v.Middleware())
	r.Engine.StaticFile("/api/docs/"+filepath.Base(schemaPath), schemaPath)

	r.Logger.Info("OpenAPI validation enabled", "schema", schemaPath, "version", v.Version())
	return nil
}
