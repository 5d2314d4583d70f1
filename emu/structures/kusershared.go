package structures

import "github.com/relsec/x86emu/emu/maps"

// KUserSharedDataAddress is the fixed virtual address every Windows
// process has KUSER_SHARED_DATA mapped read-only at, regardless of
// bitness.
const KUserSharedDataAddress = 0x7ffe0000

// SizeKUserSharedData is the page the structure occupies; real Windows
// only populates a fraction of it, the remainder reads as zero.
const SizeKUserSharedData = 0x1000

const (
	offKusdTickCountLowDeprecated = 0x00
	offKusdTickCountMultiplier    = 0x04
	offKusdInterruptTime          = 0x08
	offKusdSystemTime             = 0x14
	offKusdTimeZoneBias           = 0x20
	offKusdImageNumberLow         = 0x2e
	offKusdImageNumberHigh        = 0x30
	offKusdNtSystemRoot           = 0x32
	offKusdNtProductType          = 0x264
	offKusdProductTypeIsValid     = 0x268
	offKusdNtMajorVersion         = 0x26c
	offKusdNtMinorVersion         = 0x270
	offKusdNtBuildNumber          = 0x260
	offKusdSystemCall             = 0x308
	offKusdQpcFrequency           = 0x2d0
	offKusdQpcBias                = 0x3b0
	offKusdXStateEnabledFeatures  = 0x3d8
	offKusdCookie                 = 0x330
)

// NtProductType values as stored at offKusdNtProductType.
const (
	NtProductWinNt    = 1
	NtProductLanManNt = 2
	NtProductServer   = 3
)

// KUserSharedData is a typed view over the subset of KUSER_SHARED_DATA
// that guest code actually probes: tick count scaling, the interrupt/
// system time KSYSTEM_TIME triplets, the NT version triple and build
// number, the product type anti-VM/anti-debug checks read, and the QPC
// and XState fields newer CPUID-gated code paths touch.
type KUserSharedData struct {
	TickCountMultiplier uint32
	InterruptTime       uint64
	SystemTime          uint64
	TimeZoneBias        uint64
	NtProductType       uint32
	ProductTypeIsValid  uint8
	NtMajorVersion      uint32
	NtMinorVersion      uint32
	NtBuildNumber       uint32
	QpcFrequency        uint64
	QpcBias             uint64
	XStateEnabledFeatures uint64
	Cookie              uint32
}

// NewKUserSharedData returns a Windows 10/11 24H2-representative snapshot:
// the build number, product type, and XState feature mask real 24H2
// systems report, with a QPC increment of 0x8000000000000000 signaling
// the high-resolution performance counter path.
func NewKUserSharedData() KUserSharedData {
	return KUserSharedData{
		TickCountMultiplier: 0x0fa00000,
		NtProductType:       NtProductWinNt,
		ProductTypeIsValid:  1,
		NtMajorVersion:      10,
		NtMinorVersion:      0,
		NtBuildNumber:       0x6c51,
		QpcFrequency:        10000000,
		QpcBias:             0x8000000000000000,
		XStateEnabledFeatures: 0x1f,
	}
}

func (k KUserSharedData) Save(sp *maps.Space) error {
	const base = KUserSharedDataAddress
	if err := sp.WriteDword(base+offKusdTickCountMultiplier, k.TickCountMultiplier); err != nil {
		return err
	}
	if err := sp.WriteQword(base+offKusdInterruptTime, k.InterruptTime); err != nil {
		return err
	}
	if err := sp.WriteQword(base+offKusdSystemTime, k.SystemTime); err != nil {
		return err
	}
	if err := sp.WriteQword(base+offKusdTimeZoneBias, k.TimeZoneBias); err != nil {
		return err
	}
	if err := sp.WriteDword(base+offKusdNtProductType, k.NtProductType); err != nil {
		return err
	}
	if err := sp.WriteByte(base+offKusdProductTypeIsValid, k.ProductTypeIsValid); err != nil {
		return err
	}
	if err := sp.WriteDword(base+offKusdNtMajorVersion, k.NtMajorVersion); err != nil {
		return err
	}
	if err := sp.WriteDword(base+offKusdNtMinorVersion, k.NtMinorVersion); err != nil {
		return err
	}
	if err := sp.WriteDword(base+offKusdNtBuildNumber, k.NtBuildNumber); err != nil {
		return err
	}
	if err := sp.WriteQword(base+offKusdQpcFrequency, k.QpcFrequency); err != nil {
		return err
	}
	if err := sp.WriteQword(base+offKusdQpcBias, k.QpcBias); err != nil {
		return err
	}
	if err := sp.WriteQword(base+offKusdXStateEnabledFeatures, k.XStateEnabledFeatures); err != nil {
		return err
	}
	return sp.WriteDword(base+offKusdCookie, k.Cookie)
}

func LoadKUserSharedData(sp *maps.Space) (KUserSharedData, error) {
	var k KUserSharedData
	var err error
	const base = KUserSharedDataAddress
	if k.TickCountMultiplier, err = sp.ReadDword(base + offKusdTickCountMultiplier); err != nil {
		return k, err
	}
	if k.InterruptTime, err = sp.ReadQword(base + offKusdInterruptTime); err != nil {
		return k, err
	}
	if k.SystemTime, err = sp.ReadQword(base + offKusdSystemTime); err != nil {
		return k, err
	}
	if k.TimeZoneBias, err = sp.ReadQword(base + offKusdTimeZoneBias); err != nil {
		return k, err
	}
	if k.NtProductType, err = sp.ReadDword(base + offKusdNtProductType); err != nil {
		return k, err
	}
	if k.ProductTypeIsValid, err = sp.ReadByte(base + offKusdProductTypeIsValid); err != nil {
		return k, err
	}
	if k.NtMajorVersion, err = sp.ReadDword(base + offKusdNtMajorVersion); err != nil {
		return k, err
	}
	if k.NtMinorVersion, err = sp.ReadDword(base + offKusdNtMinorVersion); err != nil {
		return k, err
	}
	if k.NtBuildNumber, err = sp.ReadDword(base + offKusdNtBuildNumber); err != nil {
		return k, err
	}
	if k.QpcFrequency, err = sp.ReadQword(base + offKusdQpcFrequency); err != nil {
		return k, err
	}
	if k.QpcBias, err = sp.ReadQword(base + offKusdQpcBias); err != nil {
		return k, err
	}
	if k.XStateEnabledFeatures, err = sp.ReadQword(base + offKusdXStateEnabledFeatures); err != nil {
		return k, err
	}
	k.Cookie, err = sp.ReadDword(base + offKusdCookie)
	return k, err
}
