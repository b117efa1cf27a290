package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"ragdoll-renderer/internal/mathutil"
	"ragdoll-renderer/internal/ragdoll"
	"ragdoll-renderer/internal/rig"
	"ragdoll-renderer/internal/skeleton"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: inspect <rig.yaml>\n")
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	r, err := rig.Load(flag.Arg(0))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	inst, err := rig.Build(r, ragdoll.Config{})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	rd := inst.Ragdoll

	fmt.Printf("Rig: %s, texture=%q\n", r.Name, r.Texture)
	fmt.Printf("Spines: %d, Vertices: %d, Faces: %d, Frames: %d\n",
		rd.SpineCount(), rd.VertexCount(), len(rd.Faces()), len(r.Frames))

	names := make(map[skeleton.BoneID]string, len(r.Spines))
	for _, s := range r.Spines {
		id, _ := inst.Spine(s.Name)
		names[id] = s.Name
	}
	fmt.Println("--- Spine tree ---")
	if root, ok := rd.Root(); ok {
		b, _ := rd.FindSpine(root)
		printTree(b, names, 1)
	}
	for _, s := range r.Spines[1:] {
		if s.Parent != "" {
			continue
		}
		id, _ := inst.Spine(s.Name)
		b, _ := rd.FindSpine(id)
		fmt.Println("  (detached)")
		printTree(b, names, 2)
	}

	fmt.Println("--- Weight rows ---")
	table := rd.WeightTable()
	for n := range r.Vertices {
		id, _ := inst.Vertex(n)
		sum := table.RowSum(int(id))
		mark := ""
		if !mathutil.ApproxEqual(sum, 1, 1e-6) {
			mark = "  <- not normalized"
		}
		fmt.Printf("  v%-3d sum=%.3f%s\n", n, sum, mark)
	}

	fmt.Println("--- Bounds ---")
	printBounds("rest", rd.Positions())
	for _, name := range r.FrameNames() {
		if err := inst.ApplyFrame(name); err != nil {
			fmt.Printf("  %s: %v\n", name, err)
			continue
		}
		printBounds(name, rd.Positions())
	}
}

func printTree(b *skeleton.Bone, names map[skeleton.BoneID]string, depth int) {
	fmt.Printf("%s%s\n", strings.Repeat("  ", depth), describeBone(names[b.ID()], b.Local()))
	for _, c := range b.Children() {
		printTree(c, names, depth+1)
	}
}

// describeBone formats a local transform with the rotation folded into (-180°, 180°].
func describeBone(name string, t skeleton.Transform) string {
	return fmt.Sprintf("%s  t=(%.2f, %.2f) r=%.1f° s=%.2f", name,
		t.Translation[0], t.Translation[1], mathutil.Rad2Deg(mathutil.WrapAngle(t.Rotation)), t.Scale[0])
}

func printBounds(label string, positions []float32) {
	bb := mathutil.BoundsOf(positions)
	if bb.Empty() {
		fmt.Printf("  %s: empty\n", label)
		return
	}
	w, h := bb.Size()
	fmt.Printf("  %s: X[%.2f, %.2f] Y[%.2f, %.2f] size %.2f x %.2f\n", label, bb.MinX, bb.MaxX, bb.MinY, bb.MaxY, w, h)
}
