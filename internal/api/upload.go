package api

import (
	"io"
	"net/http"
	"time"

	"flightdeck/logbook/internal/common"
	"flightdeck/logbook/internal/constants"
	"flightdeck/logbook/internal/services"
)

// UploadLogbookHandler handles POST /api/v1/logbook/upload.
//
// Accepts up to 10 multipart files (CSV, Excel, PDF or images), runs the
// normalization pipeline and returns the review table. Nothing is persisted.
func (h *Handlers) UploadLogbookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		// + 1MB of form overhead
		r.Body = http.MaxBytesReader(w, r.Body, int64(constants.MaxUploadFiles*constants.MaxUploadFileSize)+1<<20)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			common.RespondError(w, initTime, err, "Invalid multipart request", http.StatusBadRequest)
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		parts := r.MultipartForm.File["files"]
		if len(parts) == 0 {
			common.RespondError(w, initTime, nil,
				constants.GetErrorMessage(constants.ErrCodeEmptyUpload), http.StatusBadRequest)
			return
		}
		if len(parts) > constants.MaxUploadFiles {
			common.RespondError(w, initTime, nil,
				constants.GetErrorMessage(constants.ErrCodeTooManyFiles), http.StatusBadRequest)
			return
		}

		files := make([]services.UploadedFile, 0, len(parts))
		for _, part := range parts {
			if part.Size > constants.MaxUploadFileSize {
				common.RespondError(w, initTime, nil,
					constants.GetErrorMessage(constants.ErrCodeFileTooLarge), http.StatusBadRequest)
				return
			}
			f, err := part.Open()
			if err != nil {
				common.RespondError(w, initTime, err, "Could not read uploaded file", http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(io.LimitReader(f, constants.MaxUploadFileSize+1))
			f.Close()
			if err != nil {
				common.RespondError(w, initTime, err, "Could not read uploaded file", http.StatusBadRequest)
				return
			}
			if len(data) > constants.MaxUploadFileSize {
				common.RespondError(w, initTime, nil,
					constants.GetErrorMessage(constants.ErrCodeFileTooLarge), http.StatusBadRequest)
				return
			}
			files = append(files, services.UploadedFile{
				Name:        part.Filename,
				ContentType: part.Header.Get("Content-Type"),
				Data:        data,
			})
		}

		resp, err := h.deps.Services.Ingest.ProcessUpload(r.Context(), files)
		if err != nil {
			respondPipelineError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Upload processed", resp)
	}
}
