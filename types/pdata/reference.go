package pdata

import errorsmod "cosmossdk.io/errors"

// Reference points at an encrypted blob held outside the record, such as a
// photo. Hash is the sha256hex of the plaintext blob.
type Reference struct {
	URL         string
	Type        string
	Hash        string
	StorageData string
}

// MakeReference builds the reference object stored in record content
func MakeReference(url, typ, hash, storageData string) *Object {
	return Reference{URL: url, Type: typ, Hash: hash, StorageData: storageData}.Object()
}

// Object converts the reference to a content object
func (r Reference) Object() *Object {
	return NewObject(
		F("url", String(r.URL)),
		F("type", String(r.Type)),
		F("hash", String(r.Hash)),
		F("storage_data", String(r.StorageData)),
	)
}

// ParseReference reads a reference object. Missing string fields are empty.
func ParseReference(v Value) (Reference, error) {
	obj, ok := v.(*Object)
	if !ok || obj == nil {
		return Reference{}, errorsmod.Wrapf(ErrInvalidValue, "reference must be an object, got %s", describe(v))
	}

	field := func(key string) (string, error) {
		fv, found := obj.Get(key)
		if !found || IsNull(fv) {
			return "", nil
		}
		s, ok := AsString(fv)
		if !ok {
			return "", errorsmod.Wrapf(ErrInvalidValue, "reference field %q is a %s", key, fv.Kind())
		}
		return s, nil
	}

	var (
		ref Reference
		err error
	)
	if ref.URL, err = field("url"); err != nil {
		return Reference{}, err
	}
	if ref.Type, err = field("type"); err != nil {
		return Reference{}, err
	}
	if ref.Hash, err = field("hash"); err != nil {
		return Reference{}, err
	}
	if ref.StorageData, err = field("storage_data"); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// MakeFullContent builds personal data content for DefaultCatalog. A nil
// photo is stored as null.
func MakeFullContent(first, last, email, phone string, photo Value) *Object {
	if photo == nil {
		photo = Null{}
	}
	return NewObject(
		F("name", NewObject(
			F("first", String(first)),
			F("last", String(last)),
		)),
		F("email", String(email)),
		F("phone", String(phone)),
		F("photo", photo),
	)
}
