package rbac

// Default policy. Admins can do everything; students browse, take tests and
// shop.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"test:view",
		"test:take",
		"result:view-own",
		"book:view",
		"cart:use",
		"asset:view",
	},
	"admin": {
		"*", // everything
	},
}
