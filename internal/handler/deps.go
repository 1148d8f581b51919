package handler

import (
	"marketplace-service/internal/cache"
	"marketplace-service/internal/mail"
	"marketplace-service/internal/media"
)

var (
	mediaStore media.Store
	slugCache  *cache.SlugCache
	mailer     mail.Mailer
)

// Init wires the handlers' collaborators. A nil slugCache disables
// caching; a nil mailer disables the welcome mail.
func Init(store media.Store, c *cache.SlugCache, m mail.Mailer) {
	mediaStore = store
	slugCache = c
	mailer = m
}
