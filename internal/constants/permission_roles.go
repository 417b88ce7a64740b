package constants

import pkgconst "brickmark-backend/internal/pkg/constants"

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:          {pkgconst.Viewer, pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	CreateAsset:       {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	EditAsset:         {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	ManageAllocations: {pkgconst.Admin, pkgconst.Superadmin},
	CreateOrder:       {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	UploadDocuments:   {pkgconst.Manager, pkgconst.Admin, pkgconst.Superadmin},
	UpdateIssuer:      {pkgconst.Admin, pkgconst.Superadmin},
	AssignRole:        {pkgconst.Admin, pkgconst.Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
