package relaysdk

// AdminPrincipal is a principal as listed on the dashboard.
type AdminPrincipal struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

type AdminApplication struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CallbackURL string `json:"callback_url"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
}

// AdminMagicLink never carries the token, only its status.
type AdminMagicLink struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	App       string `json:"app"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at"`
	UsedAt    string `json:"used_at,omitempty"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

type AdminAccessLog struct {
	Email     string `json:"email"`
	App       string `json:"app,omitempty"`
	Method    string `json:"method"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AdminDashboard is returned by GET /admin for a signed-in administrator.
type AdminDashboard struct {
	Admin        string             `json:"admin"`
	Principals   []AdminPrincipal   `json:"principals"`
	Applications []AdminApplication `json:"applications"`
	MagicLinks   []AdminMagicLink   `json:"magic_links"`
	AccessLogs   []AdminAccessLog   `json:"access_logs"`
}

// AdminActionResponse is returned by POST /admin.
type AdminActionResponse struct {
	Action    string `json:"action"`
	Message   string `json:"message"`
	ID        string `json:"id,omitempty"`
	MagicLink string `json:"magic_link,omitempty"`
}
