package syserr

type entry struct {
	code    string
	message string
}

// Failure codes the shell and WNF calls are known to return. Anything else
// falls back to the system message table.
var hresults = map[uint32]entry{
	0x80004001: {"E_NOTIMPL", "Not implemented"},
	0x80004002: {"E_NOINTERFACE", "No such interface supported"},
	0x80004003: {"E_POINTER", "Invalid pointer"},
	0x80004004: {"E_ABORT", "Operation aborted"},
	0x80004005: {"E_FAIL", "Unspecified error"},
	0x8000FFFF: {"E_UNEXPECTED", "Catastrophic failure"},
	0x80070005: {"E_ACCESSDENIED", "Access is denied"},
	0x80070006: {"E_HANDLE", "The handle is invalid"},
	0x8007000E: {"E_OUTOFMEMORY", "Not enough memory resources are available to complete this operation"},
	0x80070057: {"E_INVALIDARG", "The parameter is incorrect"},
	0x80070032: {"HRESULT_NOT_SUPPORTED", "The request is not supported"},
	0x8007007F: {"HRESULT_PROC_NOT_FOUND", "The specified procedure could not be found"},
}

var ntstatuses = map[uint32]entry{
	0x80000005: {"STATUS_BUFFER_OVERFLOW", "The data was too large to fit into the specified buffer"},
	0xC0000001: {"STATUS_UNSUCCESSFUL", "The requested operation was unsuccessful"},
	0xC0000002: {"STATUS_NOT_IMPLEMENTED", "The requested operation is not implemented"},
	0xC0000003: {"STATUS_INVALID_INFO_CLASS", "The specified information class is not a valid information class for the specified object"},
	0xC0000004: {"STATUS_INFO_LENGTH_MISMATCH", "The specified information record length does not match the length that is required for the specified information class"},
	0xC0000005: {"STATUS_ACCESS_VIOLATION", "The instruction caused a memory access violation"},
	0xC0000008: {"STATUS_INVALID_HANDLE", "An invalid HANDLE was specified"},
	0xC000000D: {"STATUS_INVALID_PARAMETER", "An invalid parameter was passed to a service or function"},
	0xC0000017: {"STATUS_NO_MEMORY", "Not enough virtual memory or paging file quota is available to complete the specified operation"},
	0xC0000022: {"STATUS_ACCESS_DENIED", "A process has requested access to an object but has not been granted those access rights"},
	0xC0000023: {"STATUS_BUFFER_TOO_SMALL", "The buffer is too small to contain the entry"},
	0xC0000034: {"STATUS_OBJECT_NAME_NOT_FOUND", "The object name is not found"},
	0xC00000BB: {"STATUS_NOT_SUPPORTED", "The request is not supported"},
	0xC0000225: {"STATUS_NOT_FOUND", "The object was not found"},
}
