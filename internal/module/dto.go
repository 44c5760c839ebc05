package module

type ModuleResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type ModulesResponse struct {
	Modules []ModuleResponse `json:"modules"`
}
