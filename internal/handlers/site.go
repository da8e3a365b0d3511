package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pathsixdesigns/pathsix-crm/internal/mail"
	"github.com/pathsixdesigns/pathsix-crm/internal/validation"
	"github.com/pathsixdesigns/pathsix-crm/internal/view"
)

// CaptchaVerifier checks a contact-form captcha response. Nil means no
// verification; the production verifier is wired in when the keys are set.
type CaptchaVerifier interface {
	Verify(ctx context.Context, response, remoteIP string) (bool, error)
}

// SiteHandler serves the public marketing pages and the contact form.
type SiteHandler struct {
	Mailer     mail.Mailer
	InboxAddr  string // destination for contact-form notifications
	SpamPolicy validation.SpamPolicy
	Captcha    CaptchaVerifier
}

func NewSiteHandler(mailer mail.Mailer, inboxAddr string) *SiteHandler {
	return &SiteHandler{Mailer: mailer, InboxAddr: inboxAddr, SpamPolicy: validation.DefaultSpamPolicy()}
}

func (h *SiteHandler) Index(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "index.html", nil)
}

func (h *SiteHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "pricing.html", nil)
}

func (h *SiteHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "contact.html", nil)
}

// ContactSubmit validates the submission, applies the content policy, then
// sends the notification email. Nothing is persisted here, so a mail failure
// is surfaced directly as its own flash category.
func (h *SiteHandler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		view.AddFlash(w, r, "danger", "Invalid form submission.")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	subject := strings.TrimSpace(r.FormValue("subject"))
	message := strings.TrimSpace(r.FormValue("message"))

	v := validation.Violations{}
	validation.Required("name", name, "Please enter your name.", v)
	validation.Required("email", email, "Please enter your email address.", v)
	validation.Email("email", email, v)
	validation.Required("subject", subject, "Please enter a site or none.", v)
	validation.Required("message", message, "Please enter a message.", v)
	if !v.Empty() {
		flashViolations(w, r, v)
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	if h.Captcha != nil {
		ok, err := h.Captcha.Verify(r.Context(), r.FormValue("g-recaptcha-response"), r.RemoteAddr)
		if err != nil || !ok {
			view.AddFlash(w, r, "danger", "Captcha verification failed. Please try again.")
			http.Redirect(w, r, "/contact", http.StatusSeeOther)
			return
		}
	}

	// Content policy runs only after structural validation so its rejection
	// reason is distinguishable from required-field errors.
	if reason, rejected := h.SpamPolicy.Check(name, subject, message); rejected {
		view.AddFlash(w, r, "rejected", string(reason))
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	body := fmt.Sprintf(
		"This message was sent from the PathSix Web Design contact form.\n\nFrom: %s <%s>\nMessage:\n%s\n",
		name, email, message,
	)
	err := h.Mailer.Send(r.Context(), mail.Message{To: h.InboxAddr, Subject: subject, Body: body})
	if err != nil {
		log.Printf("contact mail delivery: %v", err)
		view.AddFlash(w, r, "mail_error", "An error occurred while sending the message. Please try again later.")
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}
	view.AddFlash(w, r, "success", "Your message has been sent successfully!")
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}
