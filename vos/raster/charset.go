package raster

import (
	"fmt"
	"log/slog"

	"phosphor/vos/fonts/font6x8"
	"phosphor/vos/store"
)

const keyFont = "P.font"

// LoadCharset fills the charset region from the store, seeding it from the system
// font the first time.
func (m *Memory) LoadCharset(st *store.Store, log *slog.Logger) error {
	if b, ok := st.Get(keyFont); ok && len(b) == CharsetBytes {
		copy(m.b[CharsetAddr:], b)
		return nil
	} else if ok && log != nil {
		log.Warn("charset has wrong size, reseeding", slog.Int("bytes", len(b)))
	}

	copy(m.b[CharsetAddr:], font6x8.Charset())
	return m.SaveCharset(st)
}

// SaveCharset persists the charset region, including glyphs programs have poked.
func (m *Memory) SaveCharset(st *store.Store) error {
	if err := st.Set(keyFont, m.b[CharsetAddr:CharsetAddr+CharsetBytes]); err != nil {
		return fmt.Errorf("raster: save charset: %w", err)
	}
	return nil
}
