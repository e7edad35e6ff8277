package domain

import "strings"

// fleetDirectory maps normalized plates of the regional ambulance fleet to
// the institution operating the vehicle. Compiled in; maintained by hand as
// units rotate.
var fleetDirectory = map[string]string{
	"CWKV42": "HOSPITAL PADRE LAS CASAS", "DLTL67": "SAMU", "FLJW92": "HOSPITAL TOLTEN",
	"GRCH58": "HOSPITAL LONCOCHE", "GXTD94": "HOSPITAL CUNCO", "GXTD96": "HOSPITAL MIRAFLORES",
	"HKPH64": "HOSPITAL CUNCO", "HKPH65": "HOSPITAL TOLTEN", "HKPH66": "HOSPITAL GALVARINO",
	"HKPP33": "HOSPITAL LONCOCHE", "HKPV98": "HOSPITAL LAUTARO", "HKRC82": "HOSPITAL PITRUFQUEN",
	"HKRC84": "HOSPITAL VILLARRICA", "HKRC85": "SAMU / VILCUN", "HRCH58": "HOSPITAL LONCOCHE",
	"HXRP10": "HOSPITAL TEMUCO", "HXRP11": "HOSPITAL CARAHUE", "HXRP12": "HOSPITAL CUNCO",
	"HXRP14": "HOSPITAL LONCOCHE", "HXRP15": "HOSPITAL GALVARINO", "HXRP16": "HOSPITAL CARAHUE",
	"HXRP18": "HOSPITAL PITRUFQUEN", "HXRP19": "HOSPITAL VILLARRICA", "HXRP20": "HOSPITAL TOLTEN",
	"HXRP21": "HOSPITAL TEMUCO", "HXRP22": "HOSPITAL VILCUN", "HXRP23": "HOSPITAL TEMUCO",
	"HXRP24": "HOSPITAL GORBEA", "HXRP26": "HOSPITAL LONCOCHE", "HZGX64": "SAMU",
	"HZGX65": "HOSPITAL VILLARRICA", "HZGX66": "HOSPITAL PITRUFQUEN", "HZGX70": "HOSPITAL TEMUCO",
	"JHFX18": "SAMU", "KYWG26": "SAMU", "LPCT51": "HOSPITAL TEMUCO", "LPCT53": "HOSPITAL VILLARRICA",
	"LZPG72": "HOSPITAL PADRE LAS CASAS", "LZPG73": "HOSPITAL PADRE LAS CASAS",
	"PPYV76": "HOSPITAL LONCOCHE", "RBFR24": "HOSPITAL CARAHUE", "RBFR25": "HOSPITAL PITRUFQUEN",
	"RBFR28": "HOSPITAL SAAVEDRA", "RBFR29": "HOSPITAL TOLTEN", "RBFR30": "HOSPITAL VILCUN",
	"SHLF84": "HOSPITAL TEMUCO", "SHLF85": "HOSPITAL GORBEA", "SYTG24": "HOSPITAL NUEVA IMPERIAL",
}

const gendarmeriaName = "GENDARMERÍA DE CHILE"

// gendFleet is the law-enforcement fleet serviced under the Gendarmería
// contract. Plates here resolve to that contract regardless of the
// institution directory.
var gendFleet = map[string]bool{
	"JTSK31": true, "JTSK32": true, "KVBH77": true,
	"LDRW40": true, "LDRW41": true, "RKHJ56": true,
}

// NormalizePlate uppercases and strips everything outside [A-Z0-9].
// Idempotent: normalizing a normalized plate is a no-op.
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(plate) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolvePlate looks up a plate in the compiled-in directories. ok=false
// means the plate is unknown and the user must pick the client kind and type
// the institution name by hand. Pure lookup, no I/O.
func ResolvePlate(plate string) (institution string, kind ClientKind, ok bool) {
	p := NormalizePlate(plate)
	if p == "" {
		return "", ClientSSAS, false
	}
	if gendFleet[p] {
		return gendarmeriaName, ClientGend, true
	}
	inst, found := fleetDirectory[p]
	if !found {
		return "", ClientSSAS, false
	}
	if inst == "HOSPITAL TEMUCO" {
		return inst, ClientHosp, true
	}
	return inst, ClientSSAS, true
}

// SuggestEndUser mirrors the form's prefill rule: the selected client kind
// wins for contract clients, the plate directory fills in the hospital.
func SuggestEndUser(plate string, kind ClientKind) string {
	switch kind {
	case ClientGend:
		return gendarmeriaName
	case ClientPrivate:
		return "CLIENTE PARTICULAR"
	}
	if inst, _, ok := ResolvePlate(plate); ok {
		return inst
	}
	return "HOSPITAL [ESPECIFICAR]"
}
