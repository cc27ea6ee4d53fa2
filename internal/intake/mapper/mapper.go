// Package mapper transforms raw intake form fields into registry-shaped
// Person/Company payloads. Pure functions, no I/O: validation and mapping
// are fully decided before any network call is issued.
package mapper

import (
	"strings"

	intake "matter_intake_backend/internal/intake/transport"
	registry "matter_intake_backend/internal/registry/transport"
	"matter_intake_backend/platform/phone"
)

// Ordered key chains, first non-empty wins. The intake form's upstream
// producers have varied historically; the mapper must tolerate every variant
// without raising an error. Add new variants here, not in merge logic.
var (
	firstNameKeys = []string{"first_name", "firstName", "FirstName", "forename"}
	lastNameKeys  = []string{"last_name", "lastName", "LastName", "surname"}
	emailKeys     = []string{"email", "email_address", "emailAddress", "Email"}
	phoneKeys     = []string{"best_number", "phone", "phone_number", "phoneNumber", "Phone"}
	dobKeys       = []string{"date_of_birth", "dob", "dateOfBirth"}

	streetKeys   = []string{"street", "address_line_1", "address"}
	cityKeys     = []string{"city", "town"}
	provinceKeys = []string{"province", "county"}
	postcodeKeys = []string{"postal_code", "postcode", "post_code"}
	countryKeys  = []string{"country"}

	checkExpiryKeys  = []string{"id_check_expiry", "check_expiry_date", "id_expiry_date"}
	docTypeKeys      = []string{"id_document_type", "verification_method", "document_type"}
	checkIDKeys      = []string{"verification_check_id", "check_id", "id_check_reference"}
	companyNameKeys  = []string{"name", "company_name", "companyName"}
	companyNumberKeys = []string{"number", "company_number", "companyNumber"}
)

// Entity is one mapped client record, ready for reconciliation.
type Entity struct {
	Payload   registry.ContactPayload
	IsCompany bool
}

// HasPersonName reports whether the record carries a personal name.
func HasPersonName(rec intake.ClientRecord) bool {
	return rec.First(firstNameKeys...) != "" || rec.First(lastNameKeys...) != ""
}

// HasCompany reports whether the record carries (or is) an organisation.
func HasCompany(rec intake.ClientRecord) bool {
	_, ok := rec.CompanyDetails()
	return ok
}

// MapAll runs the filter-then-map pipeline over the form's client records:
// records with neither a personal name nor company details are dropped, the
// first company-bearing record is mapped to a Company entity ahead of every
// Person, and persons keep their array order. The result is an immutable
// plan for the reconciler; no I/O has happened yet.
func MapAll(records []intake.ClientRecord, instructionRef string) []Entity {
	var company *Entity
	persons := make([]Entity, 0, len(records))

	for _, rec := range records {
		if company == nil && HasCompany(rec) {
			mapped := Entity{Payload: MapCompany(rec, instructionRef), IsCompany: true}
			company = &mapped
		}
		if HasPersonName(rec) {
			persons = append(persons, Entity{Payload: MapPerson(rec, instructionRef)})
		}
	}

	entities := make([]Entity, 0, len(persons)+1)
	if company != nil {
		entities = append(entities, *company)
	}
	return append(entities, persons...)
}

// MapPerson maps a client record to a registry Person payload.
func MapPerson(rec intake.ClientRecord, instructionRef string) registry.ContactPayload {
	payload := registry.ContactPayload{
		Type:        "Person",
		FirstName:   rec.First(firstNameKeys...),
		LastName:    rec.First(lastNameKeys...),
		DateOfBirth: rec.First(dobKeys...),
	}

	if email := rec.First(emailKeys...); email != "" {
		payload.EmailAddresses = []registry.EmailAddress{
			{Name: "Home", Address: email, DefaultEmail: true},
		}
	}
	if number := rec.First(phoneKeys...); number != "" {
		payload.PhoneNumbers = []registry.PhoneNumber{
			{Name: "Mobile", Number: phone.NormalizeE164(number), DefaultNumber: true},
		}
	}
	if addr, ok := mapAddress(rec); ok {
		payload.Addresses = []registry.Address{addr}
	}

	payload.CustomFieldValues = buildVerificationFields(rec, instructionRef)
	return payload
}

// MapCompany maps a record's company details to a registry Company payload.
// The source may be the record itself or its nested company_details.
func MapCompany(rec intake.ClientRecord, instructionRef string) registry.ContactPayload {
	source := rec
	if details, ok := rec.CompanyDetails(); ok {
		source = details
	}

	payload := registry.ContactPayload{
		Type: "Company",
		Name: source.First(companyNameKeys...),
	}

	if email := source.First(emailKeys...); email != "" {
		payload.EmailAddresses = []registry.EmailAddress{
			{Name: "Work", Address: email, DefaultEmail: true},
		}
	}
	if number := source.First(phoneKeys...); number != "" {
		payload.PhoneNumbers = []registry.PhoneNumber{
			{Name: "Work", Number: phone.NormalizeE164(number), DefaultNumber: true},
		}
	}
	if addr, ok := mapAddress(source); ok {
		addr.Name = "Work"
		payload.Addresses = []registry.Address{addr}
	}

	fields := buildVerificationFields(rec, instructionRef)
	if companyNumber := source.First(companyNumberKeys...); companyNumber != "" {
		fields = appendField(fields, FieldCompanyNumber, companyNumber)
	}
	payload.CustomFieldValues = fields
	return payload
}

func mapAddress(rec intake.ClientRecord) (registry.Address, bool) {
	addr := registry.Address{
		Name:       "Home",
		Street:     rec.First(streetKeys...),
		City:       rec.First(cityKeys...),
		Province:   rec.First(provinceKeys...),
		PostalCode: rec.First(postcodeKeys...),
		Country:    rec.First(countryKeys...),
	}
	populated := addr.Street != "" || addr.City != "" || addr.PostalCode != ""
	return addr, populated
}

// buildVerificationFields constructs the custom-field values shared by both
// entity types. Deterministic and order-independent: the instruction
// reference and check metadata when present, the ID-document-type code
// always. The result never contains two entries with the same field id.
func buildVerificationFields(rec intake.ClientRecord, instructionRef string) []registry.CustomFieldValue {
	var fields []registry.CustomFieldValue

	if instructionRef != "" {
		fields = appendField(fields, FieldContactInstructionRef, instructionRef)
	}
	if expiry := rec.First(checkExpiryKeys...); expiry != "" {
		fields = appendField(fields, FieldIDCheckExpiry, expiry)
	}

	fields = appendField(fields, FieldIDDocumentType, documentTypeOption(rec))

	if checkID := rec.First(checkIDKeys...); checkID != "" {
		fields = appendField(fields, FieldVerificationCheckID, checkID)
	}

	return fields
}

func documentTypeOption(rec intake.ClientRecord) string {
	method := strings.ToLower(rec.First(docTypeKeys...))
	if strings.Contains(method, "driv") {
		return OptionDriversLicence
	}
	return OptionOtherDocument
}

// appendField adds a custom-field value unless one with the same id exists.
func appendField(fields []registry.CustomFieldValue, id int64, value string) []registry.CustomFieldValue {
	for _, f := range fields {
		if f.CustomField.ID == id {
			return fields
		}
	}
	return append(fields, registry.CustomFieldValue{
		Value:       value,
		CustomField: registry.CustomFieldRef{ID: id},
	})
}
