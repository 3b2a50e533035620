package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/gapview/pkg/core"
)

const (
	sessionName  = "gapview"
	keyID        = "id"
	keySelection = "selection"
)

// session returns the caller's session. A cookie that no longer decodes
// (rotated secret, tampering) yields a fresh session.
func (h *Handlers) session(r *http.Request) *sessions.Session {
	sess, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		h.logger.Debug("discarding unreadable session", "error", err)
	}
	if _, ok := sess.Values[keyID].(string); !ok {
		sess.Values[keyID] = uuid.NewString()
	}
	return sess
}

func sessionID(sess *sessions.Session) string {
	id, _ := sess.Values[keyID].(string)
	return id
}

// storedSelection returns the selection saved in sess, if any.
func storedSelection(sess *sessions.Session) (core.Selection, bool) {
	raw, ok := sess.Values[keySelection].(string)
	if !ok {
		return core.Selection{}, false
	}
	var sel core.Selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		return core.Selection{}, false
	}
	return sel, true
}

// saveSelection stores sel and writes the cookie. It must run before any
// part of the response body is written.
func saveSelection(w http.ResponseWriter, r *http.Request, sess *sessions.Session, sel core.Selection) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	sess.Values[keySelection] = string(raw)
	return sess.Save(r, w)
}
