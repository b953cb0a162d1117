package domain

type Tool int

const (
	ToolUnknown Tool = iota
	ToolSaveUserData
	ToolGetUserData
	ToolGetAllUserData
)

const (
	ToolNameSaveUserData    = "saveUserData"
	ToolNameGetUserData     = "getUserData"
	ToolNameGetAllUserData  = "getAllUserData"
	ToolArgKey              = "key"
	ToolArgValue            = "value"
	ToolResponseResultField = "result"
)

func ParseTool(name string) Tool {
	switch name {
	case ToolNameSaveUserData:
		return ToolSaveUserData
	case ToolNameGetUserData:
		return ToolGetUserData
	case ToolNameGetAllUserData:
		return ToolGetAllUserData
	default:
		return ToolUnknown
	}
}

func (t Tool) Name() string {
	switch t {
	case ToolSaveUserData:
		return ToolNameSaveUserData
	case ToolGetUserData:
		return ToolNameGetUserData
	case ToolGetAllUserData:
		return ToolNameGetAllUserData
	default:
		return ""
	}
}
