package smp

import "github.com/blekit/ble/sliceops"

// Config carries the fields of the SM Pairing Request/Response commands
// [Vol 3, Part H, 3.5.1 and 3.5.2]. The zero value is not useful; start
// from DefaultConfig.
type Config struct {
	IoCap       byte `json:"ioCap"`
	OobFlag     byte `json:"oobFlag"`
	AuthReq     byte `json:"authReq"`
	MaxKeySize  byte `json:"maxKeySize"`
	InitKeyDist byte `json:"initKeyDist"`
	RespKeyDist byte `json:"respKeyDist"`
}

// DefaultConfig is the capability set advertised in the pairing
// response: yes/no display, no OOB data, bonding with MITM protection
// over secure connections, CT2 set, and no key distribution beyond the
// LTK produced by pairing itself.
func DefaultConfig() Config {
	return Config{
		IoCap:      IoCapDisplayYesNo,
		OobFlag:    oobDataNotPresent,
		AuthReq:    authReqBond | authReqMITM | authReqSC | authReqCT2,
		MaxKeySize: maxEncKeySize,
	}
}

func buildPairingRsp(c Config) pdu {
	return pdu{pairingResponse, c.IoCap, c.OobFlag, c.AuthReq, c.MaxKeySize, c.InitKeyDist, c.RespKeyDist}
}

// ioCapBytes is the 3-octet IOcap parameter of f6, transmitted least
// significant octet first: ioCap, OOB flag, AuthReq.
func (c Config) ioCapBytes() []byte {
	return sliceops.SwapBuf([]byte{c.AuthReq, c.OobFlag, c.IoCap})
}
