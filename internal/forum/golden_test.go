package forum

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-markup/internal/ast"
	"github.com/goliatone/go-markup/internal/references"
	"github.com/goliatone/go-markup/pkg/testsupport"
)

func TestRenderPost_Golden(t *testing.T) {
	var cases []testsupport.RenderCase
	testsupport.LoadGolden(t, filepath.Join("testdata", "posts.json"), &cases)
	if len(cases) == 0 {
		t.Fatal("golden file has no cases")
	}

	titles := references.NewStatic().
		Set(ast.KindMovie, 123, "Super Mario Bros. in 4:57").
		Set(ast.KindGame, 1, "Super Mario Bros.")
	service := NewService(WithResolver(titles))

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			html, err := service.RenderPost(context.Background(), tc.Source, PostOptions{EnableBBCode: tc.BBCode, EnableHTML: tc.HTML})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if html != tc.Want {
				t.Fatalf("render %q\n got: %s\nwant: %s", tc.Source, html, tc.Want)
			}
		})
	}
}
