package generated

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Скачивание записи
	// (GET /api/recordings/{filename})
	DownloadRecording(w http.ResponseWriter, r *http.Request, filename Filename)
	// Удаление записи и строки журнала
	// (DELETE /api/recordings/{filename})
	DeleteRecording(w http.ResponseWriter, r *http.Request, filename Filename)
	// Состояние сервиса
	// (GET /api/health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// Журнал загрузок за день
	// (GET /api/logs)
	ListLogs(w http.ResponseWriter, r *http.Request, params ListLogsParams)
	// Сверка хранилища и журнала
	// (POST /api/maintenance/reconcile)
	Reconcile(w http.ResponseWriter, r *http.Request)
	// Этот контракт в JSON
	// (GET /api/openapi.json)
	GetOpenAPISpec(w http.ResponseWriter, r *http.Request)
	// Список записей
	// (GET /api/recordings)
	ListRecordings(w http.ResponseWriter, r *http.Request, params ListRecordingsParams)
	// Загрузка записи
	// (POST /api/recordings)
	UploadRecording(w http.ResponseWriter, r *http.Request)
	// Prometheus метрики
	// (GET /metrics)
	GetMetrics(w http.ResponseWriter, r *http.Request)
}

// Unimplemented — реализация ServerInterface, отвечающая 501 на все запросы.
// Встраивается в handlers, реализующие только часть endpoints.
type Unimplemented struct{}

func (_ Unimplemented) DownloadRecording(w http.ResponseWriter, r *http.Request, filename Filename) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) DeleteRecording(w http.ResponseWriter, r *http.Request, filename Filename) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) ListLogs(w http.ResponseWriter, r *http.Request, params ListLogsParams) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) Reconcile(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) ListRecordings(w http.ResponseWriter, r *http.Request, params ListRecordingsParams) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) UploadRecording(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

func (_ Unimplemented) GetMetrics(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotImplemented)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// MiddlewareFunc — middleware отдельной операции.
type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, handler http.Handler) {
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// bindFilename извлекает path-параметр filename. Значение декодируется
// (%2F → /), поэтому проверка безопасности имени — задача handler'а.
func (siw *ServerInterfaceWrapper) bindFilename(w http.ResponseWriter, r *http.Request) (Filename, bool) {
	var filename Filename

	err := runtime.BindStyledParameterWithOptions("simple", "filename", chi.URLParam(r, "filename"), &filename,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "filename", Err: err})
		return "", false
	}
	return filename, true
}

// DownloadRecording operation middleware
func (siw *ServerInterfaceWrapper) DownloadRecording(w http.ResponseWriter, r *http.Request) {
	filename, ok := siw.bindFilename(w, r)
	if !ok {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DownloadRecording(w, r, filename)
	}))
}

// DeleteRecording operation middleware
func (siw *ServerInterfaceWrapper) DeleteRecording(w http.ResponseWriter, r *http.Request) {
	filename, ok := siw.bindFilename(w, r)
	if !ok {
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteRecording(w, r, filename)
	}))
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.GetHealth))
}

// ListLogs operation middleware
func (siw *ServerInterfaceWrapper) ListLogs(w http.ResponseWriter, r *http.Request) {
	var params ListLogsParams

	err := runtime.BindQueryParameter("form", true, false, "date", r.URL.Query(), &params.Date)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "date", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListLogs(w, r, params)
	}))
}

// Reconcile operation middleware
func (siw *ServerInterfaceWrapper) Reconcile(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.Reconcile))
}

// GetOpenAPISpec operation middleware
func (siw *ServerInterfaceWrapper) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.GetOpenAPISpec))
}

// ListRecordings operation middleware
func (siw *ServerInterfaceWrapper) ListRecordings(w http.ResponseWriter, r *http.Request) {
	var params ListRecordingsParams

	err := runtime.BindQueryParameter("form", true, false, "item", r.URL.Query(), &params.Item)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "item", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "date", r.URL.Query(), &params.Date)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "date", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListRecordings(w, r, params)
	}))
}

// UploadRecording operation middleware
func (siw *ServerInterfaceWrapper) UploadRecording(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.UploadRecording))
}

// GetMetrics operation middleware
func (siw *ServerInterfaceWrapper) GetMetrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.GetMetrics))
}

// InvalidParamFormatError — параметр запроса не удалось разобрать.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// ChiServerOptions — параметры монтирования маршрутов.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerFromMuxWithBaseURL монтирует маршруты с префиксом baseURL.
func HandlerFromMuxWithBaseURL(si ServerInterface, r chi.Router, baseURL string) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseURL:    baseURL,
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/recordings/{filename}", wrapper.DownloadRecording)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/api/recordings/{filename}", wrapper.DeleteRecording)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/health", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/logs", wrapper.ListLogs)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/maintenance/reconcile", wrapper.Reconcile)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/openapi.json", wrapper.GetOpenAPISpec)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/recordings", wrapper.ListRecordings)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/recordings", wrapper.UploadRecording)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.GetMetrics)
	})

	return r
}
