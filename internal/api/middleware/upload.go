// upload.go — валидатор загрузок записей.
// Проверяет multipart-запрос POST /api/recordings до того, как он попадёт
// в сервисный слой: файл, тип, размер, метаданные, обязательные поля,
// длительность. При первой же ошибке запрос завершается, на диск ничего
// не пишется.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	json "github.com/goccy/go-json"
	"github.com/gookit/validate"

	apierrors "github.com/bigkaa/survey-recorder/internal/api/errors"
	"github.com/bigkaa/survey-recorder/internal/domain/model"
)

const (
	// FieldAudio — имя multipart-поля с аудиофайлом.
	FieldAudio = "audio"
	// FieldMetadata — имя multipart-поля с JSON-метаданными.
	FieldMetadata = "metadata"

	uploadPath = "/api/recordings"
	// multipartOverhead — запас на границы и поле metadata сверх лимита файла.
	multipartOverhead = 1 << 20
	// multipartMemory — часть формы, удерживаемая в памяти до сброса во временные файлы.
	multipartMemory = 8 << 20
)

// UploadLimits — лимиты валидатора.
type UploadLimits struct {
	// MaxFileSize — максимальный размер файла в байтах
	MaxFileSize int64
	// MaxDurationMs — максимальная длительность записи в миллисекундах
	MaxDurationMs float64
	// SniffContent — дополнительно проверять сигнатуру содержимого
	SniffContent bool
}

// ValidatedUpload — загрузка, прошедшая все проверки.
type ValidatedUpload struct {
	File      multipart.File
	Header    *multipart.FileHeader
	Metadata  model.UploadMetadata
	ClientIP  string
	UserAgent string
}

type uploadCtxKey struct{}

// UploadFromContext возвращает проверенную загрузку, если валидатор её сохранил.
func UploadFromContext(ctx context.Context) (*ValidatedUpload, bool) {
	u, ok := ctx.Value(uploadCtxKey{}).(*ValidatedUpload)
	return u, ok
}

// WithUpload кладёт загрузку в контекст.
func WithUpload(ctx context.Context, u *ValidatedUpload) context.Context {
	return context.WithValue(ctx, uploadCtxKey{}, u)
}

// uploadError — отказ валидатора. detail попадает только в лог.
type uploadError struct {
	status  int
	code    string
	message string
	detail  string
}

func reject(status int, code, format string, args ...any) *uploadError {
	return &uploadError{status: status, code: code, message: fmt.Sprintf(format, args...)}
}

// ValidateUpload возвращает middleware, проверяющий POST /api/recordings.
// Остальные запросы проходят без изменений.
func ValidateUpload(limits UploadLimits, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With(slog.String("component", "upload_validator"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != uploadPath {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFileSize+multipartOverhead)

			upload, uerr := validateRequest(r, limits)
			if r.MultipartForm != nil {
				defer r.MultipartForm.RemoveAll()
			}
			if uerr != nil {
				ValidationFailuresTotal.WithLabelValues(uerr.code).Inc()
				if uerr.detail != "" {
					logger.Debug("Загрузка отклонена",
						slog.String("code", uerr.code),
						slog.String("detail", uerr.detail),
					)
				}
				apierrors.WriteError(w, uerr.status, uerr.code, uerr.message)
				return
			}
			defer upload.File.Close()

			next.ServeHTTP(w, r.WithContext(WithUpload(r.Context(), upload)))
		})
	}
}

// validateRequest выполняет проверки строго по порядку.
func validateRequest(r *http.Request, limits UploadLimits) (*ValidatedUpload, *uploadError) {
	// Заявленная длина тела уже больше допустимого: разбирать незачем
	if r.ContentLength > limits.MaxFileSize+multipartOverhead {
		return nil, tooLarge(limits)
	}

	// 1. Ровно один файл в поле audio
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge(limits)
		}
		return nil, reject(http.StatusBadRequest, apierrors.CodeNoFile, "No audio file provided")
	}
	files := r.MultipartForm.File[FieldAudio]
	if len(files) != 1 {
		return nil, reject(http.StatusBadRequest, apierrors.CodeNoFile,
			"Exactly one audio file is required in field %q", FieldAudio)
	}
	header := files[0]

	// 2. Тип файла
	if !isAcceptedType(header.Header.Get("Content-Type")) {
		return nil, reject(http.StatusUnsupportedMediaType, apierrors.CodeInvalidFileType,
			"Invalid file type. Only %s is allowed", model.AudioContentType)
	}

	// 3. Размер
	if header.Size > limits.MaxFileSize {
		return nil, tooLarge(limits)
	}

	file, err := header.Open()
	if err != nil {
		return nil, reject(http.StatusBadRequest, apierrors.CodeNoFile, "Audio file could not be read")
	}

	if limits.SniffContent {
		if uerr := sniff(file); uerr != nil {
			file.Close()
			return nil, uerr
		}
	}

	// 4–6. Метаданные
	meta, uerr := parseMetadata(r.MultipartForm.Value[FieldMetadata], limits.MaxDurationMs)
	if uerr != nil {
		file.Close()
		return nil, uerr
	}

	return &ValidatedUpload{
		File:      file,
		Header:    header,
		Metadata:  meta,
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	}, nil
}

// isAcceptedType сравнивает заявленный тип без параметров (;codecs=opus).
func isAcceptedType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == model.AudioContentType
}

// sniff сверяет содержимое с сигнатурой WebM и возвращает позицию чтения в начало.
func sniff(file multipart.File) *uploadError {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return reject(http.StatusBadRequest, apierrors.CodeNoFile, "Audio file could not be read")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return reject(http.StatusBadRequest, apierrors.CodeNoFile, "Audio file could not be read")
	}
	if !mtype.Is(model.AudioContentType) && !mtype.Is("video/webm") {
		return reject(http.StatusUnsupportedMediaType, apierrors.CodeInvalidFileType,
			"Invalid file type. File content is %s, only %s is allowed", mtype.String(), model.AudioContentType)
	}
	return nil
}

// parseMetadata проверяет поле metadata: JSON-объект, обязательные поля, длительность.
func parseMetadata(values []string, maxDurationMs float64) (model.UploadMetadata, *uploadError) {
	var meta model.UploadMetadata

	if len(values) != 1 {
		return meta, reject(http.StatusBadRequest, apierrors.CodeInvalidMetadata, "Invalid metadata format")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(values[0]), &raw); err != nil || raw == nil {
		return meta, invalidMetadata(err)
	}
	if err := json.Unmarshal([]byte(values[0]), &meta); err != nil {
		return meta, invalidMetadata(err)
	}
	meta.ItemName = strings.TrimSpace(meta.ItemName)
	meta.Timestamp = strings.TrimSpace(meta.Timestamp)

	v := validate.Struct(&meta)
	if !v.Validate() {
		var missing []string
		for field, rules := range v.Errors {
			if _, ok := rules["required"]; ok {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return meta, reject(http.StatusBadRequest, apierrors.CodeMissingRequiredFields,
				"Missing required fields: %s", strings.Join(missing, ", "))
		}
		// Поле есть, но значение вне допустимого диапазона
		uerr := reject(http.StatusBadRequest, apierrors.CodeInvalidMetadata, "Invalid metadata format")
		uerr.detail = v.Errors.String()
		return meta, uerr
	}

	if meta.DurationMs > maxDurationMs {
		return meta, reject(http.StatusBadRequest, apierrors.CodeRecordingTooLong,
			"Recording too long. Maximum duration is %g seconds", maxDurationMs/1000)
	}

	return meta, nil
}

// invalidMetadata скрывает от клиента текст ошибки декодера.
func invalidMetadata(err error) *uploadError {
	uerr := reject(http.StatusBadRequest, apierrors.CodeInvalidMetadata, "Invalid metadata format")
	if err != nil {
		uerr.detail = err.Error()
	}
	return uerr
}

func tooLarge(limits UploadLimits) *uploadError {
	return reject(http.StatusRequestEntityTooLarge, apierrors.CodeFileTooLarge,
		"File too large. Maximum size is %gMB", float64(limits.MaxFileSize)/(1<<20))
}

// clientIP возвращает IP клиента без порта.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
