package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerNormalBindings(r)
	registerConfirmBindings(r)
	registerModalBindings(r)

	return r
}

func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

func registerNormalBindings(r *Registry) {
	r.Register(ContextNormal, "q", ActionQuit)
	r.Register(ContextNormal, "tab", ActionNextField)
	r.Register(ContextNormal, "e", ActionEdit)
	r.Register(ContextNormal, "r", ActionRefresh)
	r.Register(ContextNormal, "t", ActionTest)
	r.Register(ContextNormal, "enter", ActionSelect)
	r.RegisterMultiple(ContextNormal, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextNormal, []string{"down", "j"}, ActionNavigateDown)

	// Direct focus shortcuts; path-style is only reachable via tab
	r.Register(ContextNormal, "b", ActionFocusBucket)
	r.Register(ContextNormal, "R", ActionFocusRegion)
	r.Register(ContextNormal, "x", ActionFocusPrefix)
	r.Register(ContextNormal, "E", ActionFocusEndpoint)
	r.Register(ContextNormal, "a", ActionFocusAccessKey)
	r.Register(ContextNormal, "s", ActionFocusSecretKey)
	r.Register(ContextNormal, "h", ActionFocusDBHost)
	r.Register(ContextNormal, "p", ActionFocusDBPort)
	r.Register(ContextNormal, "u", ActionFocusDBUsername)
	r.Register(ContextNormal, "f", ActionFocusDBPassword)
	r.Register(ContextNormal, "l", ActionFocusDBSSL)
	r.Register(ContextNormal, "n", ActionFocusDBName)
}

func registerConfirmBindings(r *Registry) {
	r.Register(ContextConfirm, "y", ActionConfirm)
	r.Register(ContextConfirm, "n", ActionCancel)
	r.Register(ContextConfirm, "esc", ActionCancel)
	r.Register(ContextConfirm, "q", ActionQuit)
}

func registerModalBindings(r *Registry) {
	r.Register(ContextModal, "esc", ActionCloseModal)
	r.Register(ContextModal, "enter", ActionCloseModal)
	r.Register(ContextModal, "q", ActionQuit)
}
