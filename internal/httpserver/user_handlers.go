package httpserver

import (
	"net/http"

	"dmchat/internal/service"
)

// handleListContacts lists every other user, for the contact list.
func handleListContacts(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		users, err := userSvc.ListContacts(r.Context(), currentUser.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	}
}
