package domain

const MailTypeWelcome = "welcome"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type WelcomeMailData struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}
