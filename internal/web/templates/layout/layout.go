package layout

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string // "error", "success" or "info"
	Message string
}

// PageData is shared by every full page
type PageData struct {
	Title string
	Flash *FlashMessage
}

func pageTitle(data PageData) string {
	if data.Title == "" {
		return "Helpdesk Clock"
	}
	return data.Title + " | Helpdesk Clock"
}
