package smp

const (
	pairingRequest          = 0x01 // Pairing Request LE-U, ACL-U
	pairingResponse         = 0x02 // Pairing Response LE-U, ACL-U
	pairingConfirm          = 0x03 // Pairing Confirm LE-U
	pairingRandom           = 0x04 // Pairing Random LE-U
	pairingFailed           = 0x05 // Pairing Failed LE-U, ACL-U
	encryptionInformation   = 0x06 // Encryption Information LE-U
	masterIdentification    = 0x07 // Master Identification LE-U
	identityInformation     = 0x08 // Identity Information LE-U, ACL-U
	identityAddrInformation = 0x09 // Identity Address Information LE-U, ACL-U
	signingInformation      = 0x0A // Signing Information LE-U, ACL-U
	securityRequest         = 0x0B // Security Request LE-U
	pairingPublicKey        = 0x0C // Pairing Public Key LE-U
	pairingDHKeyCheck       = 0x0D // Pairing DHKey Check LE-U
	pairingKeypress         = 0x0E // Pairing Keypress Notification LE-U
)

// CidSMP is the fixed L2CAP channel of the Security Manager protocol
// [Vol 3, Part A, 2.1].
const CidSMP uint16 = 0x0006

// ACL packet boundary flags [Vol 2, Part E, 5.4.2]. SM PDUs always fit
// in one fragment, so only the first-automatically-flushable flag is
// ever sent.
const (
	pbfFirstAutoFlushable = 0x02
	pbfContinuing         = 0x01
)

// IO capability values [Vol 3, Part H, 3.5.1, Table 3.4].
const (
	IoCapDisplayOnly     = 0x00
	IoCapDisplayYesNo    = 0x01
	IoCapKeyboardOnly    = 0x02
	IoCapNoInputNoOutput = 0x03
	IoCapKeyboardDisplay = 0x04
)

// AuthReq bit masks [Vol 3, Part H, 3.5.1, Figure 3.3].
const (
	authReqBond     = 0x01
	authReqMITM     = 0x04
	authReqSC       = 0x08
	authReqKeypress = 0x10
	authReqCT2      = 0x20
)

const (
	oobDataNotPresent = 0x00
	oobDataPresent    = 0x01
)

const maxEncKeySize = 16

type pdu []byte
