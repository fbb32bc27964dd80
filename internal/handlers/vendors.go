package handlers

import "net/http"

// GetVendorsHandler возвращает поставщиков с представителями.
func (h *Handler) GetVendorsHandler(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.Store.GetVendors(r.Context())
	if err != nil {
		http.Error(w, "Failed to get vendors", http.StatusInternalServerError)
		return
	}
	out := make([]vendorDetail, 0, len(vendors))
	for _, v := range vendors {
		reps, err := h.Store.GetVendorReps(r.Context(), v.ID)
		if err != nil {
			http.Error(w, "Failed to get vendor representatives", http.StatusInternalServerError)
			return
		}
		out = append(out, vendorDetail{Vendor: v, Representatives: reps})
	}
	writeJSON(w, http.StatusOK, out)
}
