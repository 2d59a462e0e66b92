package codegen

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/menta2k/design-analyzer/pkg/types"
)

func newReactRenderer() *templateRenderer {
	style := func(c types.ComponentDefinition) string {
		return "{" + styleObject(c.Styles, '"') + "}"
	}
	return &templateRenderer{
		ext: ".tsx",
		fragments: map[types.ElementKind]fragmentFunc{
			types.KindButton: func(c types.ComponentDefinition) string {
				return fmt.Sprintf("<button style=%s>{%s}</button>", style(c), strconv.Quote(textProp(c, "text", "Button")))
			},
			types.KindText: func(c types.ComponentDefinition) string {
				return fmt.Sprintf("<span style=%s>{%s}</span>", style(c), strconv.Quote(textProp(c, "text", "Text")))
			},
			types.KindInput: func(c types.ComponentDefinition) string {
				return fmt.Sprintf("<input style=%s placeholder={%s} />", style(c), strconv.Quote(textProp(c, "placeholder", "Enter text")))
			},
		},
		fallback: func(c types.ComponentDefinition) string {
			return fmt.Sprintf("<div style=%s>{/* %s */}</div>", style(c), commentSafe(string(c.Type)))
		},
		shell: func(name string, fragments []string) string {
			return fmt.Sprintf(`import React from 'react';

export const %[1]s = () => {
  return (
    <div style={{ position: 'relative' }}>
%[2]s
    </div>
  );
};

export default %[1]s;
`, name, indent(fragments, "      "))
		},
	}
}

func newVueRenderer() *templateRenderer {
	style := func(c types.ComponentDefinition) string {
		return attr(styleObject(c.Styles, '\''))
	}
	return &templateRenderer{
		ext: ".vue",
		fragments: map[types.ElementKind]fragmentFunc{
			types.KindButton: func(c types.ComponentDefinition) string {
				return fmt.Sprintf(`<button :style="%s">%s</button>`, style(c), html.EscapeString(textProp(c, "text", "Button")))
			},
			types.KindText: func(c types.ComponentDefinition) string {
				return fmt.Sprintf(`<span :style="%s">%s</span>`, style(c), html.EscapeString(textProp(c, "text", "Text")))
			},
			types.KindInput: func(c types.ComponentDefinition) string {
				return fmt.Sprintf(`<input :style="%s" placeholder="%s" />`, style(c), html.EscapeString(textProp(c, "placeholder", "Enter text")))
			},
		},
		fallback: func(c types.ComponentDefinition) string {
			return fmt.Sprintf(`<div :style="%s"><!-- %s --></div>`, style(c), commentSafe(string(c.Type)))
		},
		shell: func(name string, fragments []string) string {
			return fmt.Sprintf(`<template>
  <div :style="{ position: 'relative' }">
%s
  </div>
</template>

<script>
export default {
  name: '%s',
}
</script>
`, indent(fragments, "    "), name)
		},
	}
}

func newAngularRenderer() *templateRenderer {
	style := func(c types.ComponentDefinition) string {
		return attr(styleObject(c.Styles, '\''))
	}
	return &templateRenderer{
		ext: ".component.ts",
		fragments: map[types.ElementKind]fragmentFunc{
			types.KindButton: func(c types.ComponentDefinition) string {
				return fmt.Sprintf(`<button [ngStyle]="%s">%s</button>`, style(c), html.EscapeString(textProp(c, "text", "Button")))
			},
			types.KindText: func(c types.ComponentDefinition) string {
				return fmt.Sprintf(`<span [ngStyle]="%s">%s</span>`, style(c), html.EscapeString(textProp(c, "text", "Text")))
			},
			types.KindInput: func(c types.ComponentDefinition) string {
				return fmt.Sprintf(`<input [ngStyle]="%s" placeholder="%s" />`, style(c), html.EscapeString(textProp(c, "placeholder", "Enter text")))
			},
		},
		fallback: func(c types.ComponentDefinition) string {
			return fmt.Sprintf(`<div [ngStyle]="%s"><!-- %s --></div>`, style(c), commentSafe(string(c.Type)))
		},
		shell: func(name string, fragments []string) string {
			body := indent(fragments, "      ")
			body = strings.NewReplacer("`", "\\`", "${", "\\${").Replace(body)
			return fmt.Sprintf(`import { Component } from '@angular/core';

@Component({
  selector: '%s',
  template: `+"`"+`
    <div [ngStyle]="{ position: 'relative' }">
%s
    </div>
  `+"`"+`
})
export class %s {}
`, selectorFor(name), body, name)
		},
	}
}

// attr escapes a value for a double-quoted HTML attribute
func attr(s string) string {
	return strings.NewReplacer("&", "&amp;", `"`, "&quot;").Replace(s)
}

// commentSafe keeps a value from terminating the surrounding comment
func commentSafe(s string) string {
	return strings.NewReplacer("*/", "* /", "-->", "-- >").Replace(s)
}

// selectorFor turns GeneratedComponent into app-generated-component
func selectorFor(name string) string {
	var b strings.Builder
	b.WriteString("app")
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		if i == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}
