package constants

const (
	ViewData          = "view_data"
	CreateAsset       = "create_asset"
	EditAsset         = "edit_asset"
	ManageAllocations = "manage_allocations"
	CreateOrder       = "create_order"
	UploadDocuments   = "upload_documents"
	UpdateIssuer      = "update_issuer"
	AssignRole        = "assign_role"
)
