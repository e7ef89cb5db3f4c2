package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatusNew is the status of every contact message as created by the site.
const ContactStatusNew = "new"

// ContactMessage is a lead submitted through the landing page contact form.
type ContactMessage struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
