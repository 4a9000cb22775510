package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	// Contexts define where keybindings are active
	ContextGlobal  Context = "global"  // Available everywhere
	ContextNormal  Context = "normal"  // Normal mode browsing
	ContextConfirm Context = "confirm" // Confirmation popups
	ContextModal   Context = "modal"   // Dismissable popups (error, success, test results)
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)

	// Navigation actions
	ActionNavigateUp   Action = "navigate_up"   // Move selection up
	ActionNavigateDown Action = "navigate_down" // Move selection down
	ActionNextField    Action = "next_field"    // Cycle focus to the next field

	// Browsing actions
	ActionEdit    Action = "edit"    // Start editing the focused field
	ActionRefresh Action = "refresh" // Reload the snapshot listing
	ActionTest    Action = "test"    // Test connectivity for the focused panel
	ActionSelect  Action = "select"  // Pick the highlighted snapshot

	// Direct focus shortcuts
	ActionFocusBucket     Action = "focus_bucket"
	ActionFocusRegion     Action = "focus_region"
	ActionFocusPrefix     Action = "focus_prefix"
	ActionFocusEndpoint   Action = "focus_endpoint"
	ActionFocusAccessKey  Action = "focus_access_key"
	ActionFocusSecretKey  Action = "focus_secret_key"
	ActionFocusDBHost     Action = "focus_db_host"
	ActionFocusDBPort     Action = "focus_db_port"
	ActionFocusDBUsername Action = "focus_db_username"
	ActionFocusDBPassword Action = "focus_db_password"
	ActionFocusDBSSL      Action = "focus_db_ssl"
	ActionFocusDBName     Action = "focus_db_name"

	// Popup actions
	ActionConfirm    Action = "confirm"     // Confirm action (y)
	ActionCancel     Action = "cancel"      // Cancel action (n)
	ActionCloseModal Action = "close_modal" // Dismiss current popup
)
