package shared

// Permission strings handed down by the backend with the user profile.
// Checks are plain string membership; the backend owns role composition.
const (
	PermSuppliersView = "suppliers.view"
	PermSuppliersEdit = "suppliers.edit"

	PermDepartmentsView = "departments.view"
	PermDepartmentsEdit = "departments.edit"

	PermInvoiceTypesView = "invoice-types.view"
	PermInvoiceTypesEdit = "invoice-types.edit"

	PermAdocTypesView = "adoc-types.view"
	PermAdocTypesEdit = "adoc-types.edit"

	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"

	PermInvoicesView = "invoices.view"
	PermInvoicesEdit = "invoices.edit"

	PermAdocsView = "adocs.view"
	PermAdocsEdit = "adocs.edit"

	PermLPDView = "lpd.view"
	PermLPDEdit = "lpd.edit"

	PermSPIView = "spi.view"
	PermSPIEdit = "spi.edit"

	PermReportsPrint = "reports.print"
)

// AllPermissions lists every permission the screens reference, used by tests
// to build a fully-privileged profile.
func AllPermissions() []string {
	return []string{
		PermSuppliersView, PermSuppliersEdit,
		PermDepartmentsView, PermDepartmentsEdit,
		PermInvoiceTypesView, PermInvoiceTypesEdit,
		PermAdocTypesView, PermAdocTypesEdit,
		PermUsersView, PermUsersEdit,
		PermInvoicesView, PermInvoicesEdit,
		PermAdocsView, PermAdocsEdit,
		PermLPDView, PermLPDEdit,
		PermSPIView, PermSPIEdit,
		PermReportsPrint,
	}
}
