package usbdevice

type RequestType uint8

const (
	RequestTypeStandardDeviceGetRequest RequestType = 0b10000000
	RequestTypeVideoInterfaceSetRequest RequestType = 0b00100001
	RequestTypeVideoInterfaceGetRequest RequestType = 0b10100001
)

type RequestCode uint8

const (
	RequestCodeGetDescriptor RequestCode = 0x06
	RequestCodeSetCur        RequestCode = 0x01
	RequestCodeGetCur        RequestCode = 0x81
	RequestCodeGetMax        RequestCode = 0x83
)
