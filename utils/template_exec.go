package utils

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/CloudyKit/jet"
)

// ExecuteWriteTemplateFile renders the template file with data into writer.
// Template output is written through unescaped, the templates produce plain
// text rather than HTML.
func ExecuteWriteTemplateFile(writer io.Writer, data interface{}, tplFileName string) error {
	path := filepath.Dir(tplFileName)
	view := jet.NewSet(jet.SafeWriter(func(w io.Writer, b []byte) {
		w.Write(b)
	}), path, "/")

	template, err := view.GetTemplate(filepath.Base(tplFileName))
	if err != nil {
		return fmt.Errorf("Error while loading template file %s: %v", tplFileName, err)
	}

	vars := make(jet.VarMap)
	if err = template.Execute(writer, vars, data); err != nil {
		return fmt.Errorf("Error while executing template %s: %v", tplFileName, err)
	}
	return nil
}
