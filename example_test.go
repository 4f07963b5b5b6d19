// SPDX-License-Identifier: Unlicense OR MIT

package overtide_test

import (
	"log"

	"golang.org/x/image/font/gofont/goregular"

	"overtide.org"
	"overtide.org/font"
	"overtide.org/style"
	"overtide.org/subtitle"
)

// Render a one-event document into a caller-owned framebuffer.
func Example() {
	lib := overtide.Init()
	r := overtide.NewRendererWithProvider(lib, nil)

	info, err := font.DescribeData(goregular.TTF, 0)
	if err != nil {
		log.Fatal(err)
	}
	r.Fonts().AddMemoryFont(info)

	st := style.Default()
	st.FontFamilies = []string{info.Family}
	r.SetSubtitles(&subtitle.Document{Events: []subtitle.Event{{
		Start: 0,
		End:   5000,
		Root: &subtitle.BlockContainer{
			Style: st,
			Inline: &subtitle.InlineContent{Root: subtitle.Span{
				Style:    st,
				Children: []subtitle.Item{subtitle.Text{Text: "Hello, world"}},
			}},
		},
	}}})

	ctx := overtide.SubtitleContext{DPI: 72, VideoWidth: 640, VideoHeight: 360}
	frame := make([]uint8, 640*360*4)
	if err := r.Render(&ctx, 1000, frame, 640, 360, 640); err != nil {
		log.Fatal(err)
	}
	// frame now holds the premultiplied BGRA overlay for t=1s.
}
