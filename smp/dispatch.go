package smp

import "context"

type smpDispatcher struct {
	desc    string
	handler func(ctx context.Context, e *Engine, handle uint16, in pdu) error
}

// Codes with a nil handler are either initiator-only or belong to key
// distribution, which this responder does not perform; they fall through
// to the unknown-command path.
var dispatcher = map[byte]smpDispatcher{
	pairingRequest:          {"pairing request", onPairingRequest},
	pairingResponse:         {"pairing response", nil},
	pairingConfirm:          {"pairing confirm", nil},
	pairingRandom:           {"pairing random", onPairingRandom},
	pairingFailed:           {"pairing failed", onPairingFailed},
	encryptionInformation:   {"encryption info", nil},
	masterIdentification:    {"master id", nil},
	identityInformation:     {"id info", nil},
	identityAddrInformation: {"id addr info", nil},
	signingInformation:      {"signing info", nil},
	securityRequest:         {"security req", nil},
	pairingPublicKey:        {"pairing pub key", onPairingPublicKey},
	pairingDHKeyCheck:       {"pairing dhkey check", onDHKeyCheck},
	pairingKeypress:         {"pairing keypress", nil},
}

//Core spec v5.2, Vol 3, Part H, 3.5.5, Table 3.7
var pairingFailedReason = []string{
	"reserved",
	"passkey entry failed",
	"oob not available",
	"authentication requirements",
	"confirm value failed",
	"pairing not supported",
	"encryption key size",
	"command not supported",
	"unspecified reason",
	"repeated attempts",
	"invalid parameters",
	"dhkey check failed",
	"numeric comparison failed",
	"BR/EDR pairing in progress",
	"Cross-transport Key Derivation/Generation not allowed",
}
