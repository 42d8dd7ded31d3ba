package reference

// EnumDirectory описывает один справочник типа enum
type EnumDirectory struct {
	Name  string     `yaml:"name"`
	Items []EnumItem `yaml:"items"`
}

type EnumItem struct {
	Code  string `yaml:"code"`
	Name  string `yaml:"name"`
	Order int    `yaml:"order,omitempty"`
}

// FirstCode возвращает код первого элемента справочника (или пусто)
func (d EnumDirectory) FirstCode() string {
	if len(d.Items) == 0 {
		return ""
	}
	return d.Items[0].Code
}
