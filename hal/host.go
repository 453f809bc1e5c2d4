package hal

// Options sizes the host devices.
type Options struct {
	Width, Height int

	// FlashPath backs the flash device with a file. Empty means no flash.
	FlashPath string
	FlashSize uint32
}

// Host is the desktop implementation of HAL.
type Host struct {
	fb    *hostFramebuffer
	kbd   *hostKeyboard
	ptr   *hostPointer
	t     *hostTime
	flash Flash
}

var _ HAL = (*Host)(nil)

// New returns a host HAL. A flash file that cannot be opened leaves a device
// whose every operation fails, so the error surfaces where flash is used.
func New(opts Options) *Host {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 240, 160
	}
	var flash Flash = stubFlash{}
	if opts.FlashPath != "" {
		flash = newHostFlash(opts.FlashPath, opts.FlashSize)
	}
	return &Host{
		fb:    newHostFramebuffer(opts.Width, opts.Height),
		kbd:   newHostKeyboard(),
		ptr:   newHostPointer(),
		t:     newHostTime(),
		flash: flash,
	}
}

func (h *Host) Display() Display { return hostDisplay{fb: h.fb} }
func (h *Host) Input() Input     { return hostInput{kbd: h.kbd, ptr: h.ptr} }
func (h *Host) Flash() Flash     { return h.flash }
func (h *Host) Time() Time       { return h.t }

// Close releases the flash file, if any.
func (h *Host) Close() error {
	if f, ok := h.flash.(*hostFlash); ok {
		return f.Close()
	}
	return nil
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
	ptr *hostPointer
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
func (in hostInput) Pointer() Pointer   { return in.ptr }
