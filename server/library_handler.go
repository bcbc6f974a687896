package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"crateaudit/core/analytics"
	"crateaudit/core/ingest"
	"crateaudit/core/library"
	"crateaudit/logger"
	"crateaudit/model"

	"github.com/gorilla/mux"
)

const maxUploadSize = 64 << 20 // 64MB

// uploadResponse is returned after a successful library load.
type uploadResponse struct {
	Library         *model.Library     `json:"library"`
	Stats           model.LibraryStats `json:"stats"`
	Playlists       []string           `json:"playlists"`
	GigReadyPercent float64            `json:"gig_ready_percent"`
}

// UploadLibraryHandler loads an analyzer export as a new baseline.
// The export is either the raw JSON request body or the "file" field of a
// multipart form.
func (h *APIHandler) UploadLibraryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	raw, name, err := readExport(r)
	if err != nil {
		logger.Warn("[Upload] 读取导出文件失败", logger.Int64("user", userID), logger.ErrorField(err))
		http.Error(w, "Failed to read export: "+err.Error(), http.StatusBadRequest)
		return
	}

	lib, err := h.libraries.Import(r.Context(), userID, name, model.LibrarySourceUpload, raw)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidExport) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("[Upload] 保存曲库失败", logger.Int64("user", userID), logger.ErrorField(err))
		http.Error(w, "Failed to save library", http.StatusInternalServerError)
		return
	}

	baseline := lib.Baseline.AnalysisResult
	writeJSON(w, http.StatusCreated, uploadResponse{
		Library:         lib,
		Stats:           baseline.Stats,
		Playlists:       analytics.BuildPlaylistIndex(baseline.Tracks),
		GigReadyPercent: analytics.GigReadyPercent(baseline.Stats),
	})
}

func readExport(r *http.Request) ([]byte, string, error) {
	name := r.URL.Query().Get("name")
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", err
		}
		if name == "" {
			name = "upload.json"
		}
		return raw, name, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", errors.New("missing 'file' in form")
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	if v := r.FormValue("name"); v != "" {
		name = v
	}
	if name == "" {
		name = filepath.Base(header.Filename)
	}
	return raw, name, nil
}

// ListLibrariesHandler returns the user's load history, newest first.
func (h *APIHandler) ListLibrariesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	libs, err := h.libraries.History(r.Context(), userID, limit)
	if err != nil {
		logger.Error("[History] 查询曲库失败", logger.Int64("user", userID), logger.ErrorField(err))
		http.Error(w, "Failed to list libraries", http.StatusInternalServerError)
		return
	}
	if libs == nil {
		libs = []*model.Library{}
	}
	writeJSON(w, http.StatusOK, libs)
}

// LatestLibraryHandler returns the unfiltered view of the most recent load.
func (h *APIHandler) LatestLibraryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lib, err := h.libraries.Latest(r.Context(), userID)
	if err != nil {
		h.libraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.libraries.View(r.Context(), lib, analytics.AllPlaylists))
}

// AnalysisHandler returns the library scoped to ?playlist=. A playlist the
// library never references yields the empty view plus a suggestion.
func (h *APIHandler) AnalysisHandler(w http.ResponseWriter, r *http.Request) {
	lib, ok := h.loadLibrary(w, r)
	if !ok {
		return
	}
	view := h.libraries.View(r.Context(), lib, r.URL.Query().Get("playlist"))
	writeJSON(w, http.StatusOK, view)
}

// PlaylistsHandler returns the sorted playlist index, ranked by ?q= when given.
func (h *APIHandler) PlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	lib, ok := h.loadLibrary(w, r)
	if !ok {
		return
	}
	playlists := analytics.BuildPlaylistIndex(lib.Baseline.Tracks)
	if q := r.URL.Query().Get("q"); q != "" {
		playlists = library.Rank(q, playlists, 0.7)
		if playlists == nil {
			playlists = []string{}
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"library_id": lib.ID,
		"playlists":  playlists,
	})
}

// ExportHandler streams back the archived analyzer document.
func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lib, data, err := h.libraries.RawExport(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, library.ErrNoExport) {
			http.Error(w, "Export not archived", http.StatusNotFound)
			return
		}
		h.libraryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", lib.Name))
	w.Write(data)
}

// DeleteLibraryHandler 删除曲库
func (h *APIHandler) DeleteLibraryHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.libraries.Delete(r.Context(), userID, id); err != nil {
		h.libraryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) loadLibrary(w http.ResponseWriter, r *http.Request) (*model.Library, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	lib, err := h.libraries.Get(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.libraryError(w, err)
		return nil, false
	}
	return lib, true
}

func (h *APIHandler) libraryError(w http.ResponseWriter, err error) {
	if library.IsNotFound(err) {
		http.Error(w, "Library not found", http.StatusNotFound)
		return
	}
	logger.Error("library lookup failed", logger.ErrorField(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
