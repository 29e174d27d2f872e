package validator

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	apperrors "ice-breakun/backend/pkg/errors"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// OpenAPIValidator checks request bodies against an OpenAPI document.
// Routes the document does not describe pass through untouched.
type OpenAPIValidator struct {
	schemaPath string

	mu      sync.RWMutex
	swagger *openapi3.T
	router  routers.Router
}

// NewOpenAPIValidator loads and validates the document at schemaPath
func NewOpenAPIValidator(schemaPath string) (*OpenAPIValidator, error) {
	v := &OpenAPIValidator{schemaPath: schemaPath}
	if err := v.ReloadSchema(); err != nil {
		return nil, err
	}
	return v, nil
}

func loadOpenAPISchema(path string) (*openapi3.T, routers.Router, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load OpenAPI schema from %s: %w", path, err)
	}

	if err := swagger.Validate(loader.Context); err != nil {
		return nil, nil, fmt.Errorf("invalid OpenAPI schema: %w", err)
	}

	router, err := gorillamux.NewRouter(swagger)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating OpenAPI router: %w", err)
	}
	return swagger, router, nil
}

// ReloadSchema reloads the OpenAPI schema from disk
func (v *OpenAPIValidator) ReloadSchema() error {
	swagger, router, err := loadOpenAPISchema(v.schemaPath)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.swagger = swagger
	v.router = router
	return nil
}

// Version returns the info.version of the loaded document
func (v *OpenAPIValidator) Version() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.swagger.Info == nil {
		return ""
	}
	return v.swagger.Info.Version
}

// Middleware rejects requests whose body does not match the document with
// 400 "Invalid request body", or 413 when the body exceeded the size limit.
func (v *OpenAPIValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		v.mu.RLock()
		router := v.router
		v.mu.RUnlock()

		route, pathParams, err := router.FindRoute(c.Request)
		if err != nil {
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				MultiError:         false,
			},
		}

		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				_ = c.Error(apperrors.NewError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large").WithCause(err))
			} else {
				_ = c.Error(apperrors.FromKind(apperrors.KindValidation, "Invalid request body", err))
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
