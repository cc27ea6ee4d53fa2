// Package transport defines the wire shapes exchanged with the
// practice-management registry API.
package transport

// Ref references a registry record by id.
type Ref struct {
	ID int64 `json:"id"`
}

// EmailAddress is one entry of a contact's email collection. The registry
// models these as small arrays even though intake only ever populates one.
type EmailAddress struct {
	Name         string `json:"name,omitempty"`
	Address      string `json:"address"`
	DefaultEmail bool   `json:"default_email,omitempty"`
}

// PhoneNumber is one entry of a contact's phone collection.
type PhoneNumber struct {
	Name          string `json:"name,omitempty"`
	Number        string `json:"number"`
	DefaultNumber bool   `json:"default_number,omitempty"`
}

// Address is one entry of a contact's address collection.
type Address struct {
	Name       string `json:"name,omitempty"`
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CustomFieldRef identifies a custom-field definition. Name is only present
// on reads; outgoing payloads reference fields by id alone.
type CustomFieldRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// CustomFieldValue pairs a value with its custom-field definition. On
// updates, ID carries the registry-assigned id of an existing value so the
// write replaces it in place instead of appending a duplicate.
type CustomFieldValue struct {
	ID          *int64         `json:"id,omitempty"`
	Value       string         `json:"value"`
	CustomField CustomFieldRef `json:"custom_field"`
}

// ContactPayload is the registry-shaped entity sent on contact create/update.
type ContactPayload struct {
	Type              string             `json:"type"`
	FirstName         string             `json:"first_name,omitempty"`
	LastName          string             `json:"last_name,omitempty"`
	Name              string             `json:"name,omitempty"`
	DateOfBirth       string             `json:"date_of_birth,omitempty"`
	EmailAddresses    []EmailAddress     `json:"email_addresses,omitempty"`
	PhoneNumbers      []PhoneNumber      `json:"phone_numbers,omitempty"`
	Addresses         []Address          `json:"addresses,omitempty"`
	Company           *Ref               `json:"company,omitempty"`
	CustomFieldValues []CustomFieldValue `json:"custom_field_values,omitempty"`
}

// PrimaryEmail returns the first email address of the payload, or "".
func (p ContactPayload) PrimaryEmail() string {
	if len(p.EmailAddresses) == 0 {
		return ""
	}
	return p.EmailAddresses[0].Address
}

// Contact is a registry contact as returned by search and detail endpoints.
type Contact struct {
	ID                  int64              `json:"id"`
	Type                string             `json:"type"`
	FirstName           string             `json:"first_name,omitempty"`
	LastName            string             `json:"last_name,omitempty"`
	Name                string             `json:"name,omitempty"`
	DateOfBirth         string             `json:"date_of_birth,omitempty"`
	PrimaryEmailAddress string             `json:"primary_email_address,omitempty"`
	PrimaryPhoneNumber  string             `json:"primary_phone_number,omitempty"`
	Addresses           []Address          `json:"addresses,omitempty"`
	CustomFieldValues   []CustomFieldValue `json:"custom_field_values,omitempty"`
}

// CustomFieldDefinition describes one custom field of the registry schema.
type CustomFieldDefinition struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	ParentType string `json:"parent_type"`
}

// MatterPayload is the matter-creation request body.
type MatterPayload struct {
	Client              Ref                `json:"client"`
	Description         string             `json:"description"`
	PracticeArea        Ref                `json:"practice_area"`
	ResponsibleAttorney Ref                `json:"responsible_attorney"`
	OriginatingAttorney Ref                `json:"originating_attorney"`
	Status              string             `json:"status"`
	RiskResult          string             `json:"risk_result,omitempty"`
	ClientReference     string             `json:"client_reference,omitempty"`
	CustomFieldValues   []CustomFieldValue `json:"custom_field_values,omitempty"`
}

// Matter is the registry's view of a created matter.
type Matter struct {
	ID            int64  `json:"id"`
	DisplayNumber string `json:"display_number,omitempty"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status,omitempty"`
}
