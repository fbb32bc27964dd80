package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"procure/internal/lifecycle"
)

// ResetHandler обрабатывает POST /api/admin/reset запрос: удаляет все
// строки всех таблиц и все загруженные файлы. Необратимо, только для
// возврата демо-стенда к пустому состоянию.
func (h *Handler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.persona(w, r, lifecycle.ActionReset, lifecycle.PersonaAdmin); !ok {
		return
	}

	if err := h.Store.ResetAll(r.Context()); err != nil {
		http.Error(w, "Failed to reset data", http.StatusInternalServerError)
		return
	}

	entries, err := os.ReadDir(h.UploadDir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				os.Remove(filepath.Join(h.UploadDir, e.Name()))
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "All data and uploads cleared.",
	})
}
