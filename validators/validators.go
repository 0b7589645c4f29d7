// Package validators holds the payload validation helpers for the api
// types: chain address and amount shapes, plus the custom govalidator
// tags the payload structs carry.
package validators

import (
	"regexp"

	"github.com/asaskevich/govalidator"
	uuid "github.com/satori/go.uuid"
)

func init() {
	govalidator.CustomTypeTagMap.Set("requiredUUID", govalidator.CustomTypeValidator(IsRequiredUUID))
}

var (
	btcAddressRE    = regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`)
	ethAddressRE    = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	decimalAmountRE = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)
)

// IsBTCAddress checks if the string is a plausible BTC address
func IsBTCAddress(v string) bool {
	return btcAddressRE.MatchString(v)
}

// IsETHAddress checks if the string is a checksummed or lowercase ETH address
func IsETHAddress(v string) bool {
	return ethAddressRE.MatchString(v)
}

// IsDecimalAmount checks if the string is a non-negative decimal amount
func IsDecimalAmount(v string) bool {
	return decimalAmountRE.MatchString(v)
}

// IsRequiredUUID checks if the uuid is present
func IsRequiredUUID(i interface{}, context interface{}) bool {
	switch v := i.(type) { // you can type switch on the context interface being validated
	case uuid.UUID:
		return !uuid.Equal(v, uuid.Nil)
	default:
		panic("invalid type received in IsRequiredUUID")
	}
}
