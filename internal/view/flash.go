package view

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const flashCookieName = "flash"

// Flash is a one-shot message surfaced on the next rendered page.
// Category follows the usual bootstrap-ish vocabulary: success, danger, error,
// warning, info.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// AddFlash appends a flash message, preserving any already queued on this
// response/request cycle.
func AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	flashes := readFlashes(r)
	flashes = append(flashes, Flash{Category: category, Message: message})
	writeFlashes(w, flashes)
}

// AddFlashes queues several messages under one category.
func AddFlashes(w http.ResponseWriter, r *http.Request, category string, messages []string) {
	flashes := readFlashes(r)
	for _, m := range messages {
		flashes = append(flashes, Flash{Category: category, Message: m})
	}
	writeFlashes(w, flashes)
}

// PopFlashes returns queued flashes and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
	}
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}

func writeFlashes(w http.ResponseWriter, flashes []Flash) {
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:  flashCookieName,
		Value: url.QueryEscape(string(raw)),
		Path:  "/",
	})
}
