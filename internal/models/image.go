package models

// ImageOfDay описывает картинку раздела: Bing, кот или чудо природы.
type ImageOfDay struct {
	Title       string
	URL         string
	Caption     string
	Attribution string
	PageURL     string
	Date        string
}
