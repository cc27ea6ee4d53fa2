package mapper

// Registry custom-field ids. These are fixed per the registry schema and
// referenced numerically on writes; the human-readable names only matter
// when merging against values the registry returns.
const (
	// Contact custom fields.
	FieldContactInstructionRef int64 = 380728
	FieldIDCheckExpiry         int64 = 235702
	FieldIDDocumentType        int64 = 235699
	FieldVerificationCheckID   int64 = 286228
	FieldCompanyNumber         int64 = 368788

	// Matter custom fields.
	FieldSupervisingPartner   int64 = 232574
	FieldFolderStructure      int64 = 299746
	FieldDisputeValueBracket  int64 = 378566
	FieldMatterInstructionRef int64 = 380722
)

// Picklist option ids for the ID-document-type field.
const (
	OptionDriversLicence = "142570"
	OptionOtherDocument  = "142567"
)

// FolderStructureOptions maps the form's folder-structure code to the
// registry picklist option id. Unmapped codes are omitted from the matter.
var FolderStructureOptions = map[string]string{
	"STANDARD":   "198472",
	"LITIGATION": "198475",
	"ADVISORY":   "198478",
	"DEBT":       "198481",
	"PROPERTY":   "198484",
}

// DisputeValueOptions maps the form's dispute-value bracket to the registry
// picklist option id. Unmapped brackets are omitted from the matter.
var DisputeValueOptions = map[string]string{
	"Less than £10,000":    "201310",
	"£10,000 - £50,000":    "201313",
	"£50,000 - £250,000":   "201316",
	"£250,000 - £1million": "201319",
	"More than £1million":  "201322",
}
