package pages

import (
	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/web/templates/layout"
)

// IndexData is the data for the home page
type IndexData struct {
	layout.PageData
	People []model.PersonStatus
}
