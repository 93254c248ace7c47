package descriptors

import "github.com/google/uuid"

var (
	GUIDFormatYUY2 = uuid.MustParse("32595559-0000-0010-8000-00AA00389B71")
	GUIDFormatNV12 = uuid.MustParse("3231564E-0000-0010-8000-00AA00389B71")
	GUIDFormatM420 = uuid.MustParse("3032344D-0000-0010-8000-00AA00389B71")
	GUIDFormatI420 = uuid.MustParse("30323449-0000-0010-8000-00AA00389B71")
)

var fourCCs = map[uuid.UUID]string{
	GUIDFormatYUY2: "YUY2",
	GUIDFormatNV12: "NV12",
	GUIDFormatM420: "M420",
	GUIDFormatI420: "I420",
}

// decodeGUID reads a GUID stored with its first three groups little endian, as
// described in UVC 1.5 section 2.9.
func decodeGUID(src []byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = src[3], src[2], src[1], src[0]
	u[4], u[5] = src[5], src[4]
	u[6], u[7] = src[7], src[6]
	copy(u[8:], src[8:16])
	return u
}

// FourCC names the pixel layout of an uncompressed format GUID, or "" when the GUID
// is not one of the well known layouts.
func FourCC(guid uuid.UUID) string {
	return fourCCs[guid]
}
