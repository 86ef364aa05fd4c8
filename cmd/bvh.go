package cmd

import (
	"bytes"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Display BVH statistics for a scene and optionally cross-check traversal
// against a brute force scan of the primitive list.
func ShowBVHInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, _, err := loadScene(ctx)
	if err != nil {
		return err
	}

	bvh := sc.BVH()
	stats := bvh.Stats()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Primitives", "Excluded", "Nodes", "Leaves", "Max depth", "Avg leaf depth", "Max leaf size", "Build time"})
	table.Append([]string{
		sc.Name(),
		fmt.Sprintf("%d", stats.Primitives),
		fmt.Sprintf("%d", stats.Excluded),
		fmt.Sprintf("%d", stats.Nodes),
		fmt.Sprintf("%d", stats.Leaves),
		fmt.Sprintf("%d", stats.MaxDepth),
		fmt.Sprintf("%.2f", stats.AvgLeafDepth),
		fmt.Sprintf("%d", stats.MaxLeafSize),
		stats.BuildTime.String(),
	})
	table.Render()
	logger.Noticef("bvh statistics\n%s", buf.String())

	if err := bvh.Validate(); err != nil {
		return err
	}

	if n := ctx.Int("verify"); n > 0 {
		mismatches := verifyTraversal(bvh, n, ctx.Uint64("seed"))
		if mismatches > 0 {
			return errors.Errorf("bvh traversal disagreed with linear scan on %d of %d rays", mismatches, n)
		}
		logger.Noticef("bvh traversal matches linear scan on %d rays", n)
	}
	return nil
}

// verifyTraversal shoots n random rays from around the scene bounds and
// counts those where NearestHit and LinearHit disagree
func verifyTraversal(bvh *geometry.BVH, n int, seed uint64) int {
	if bvh.Len() == 0 {
		return 0
	}
	bounds := bvh.Bounds()
	center := bounds.Center()
	radius := bounds.Size().Length()
	if radius == 0 || math.IsInf(radius, 0) {
		radius = 1
	}

	sampler := core.NewSampler(seed)
	mismatches := 0
	for i := 0; i < n; i++ {
		origin := center.Add(core.SampleOnUnitSphere(sampler.Get2D()).Multiply(radius))
		target := center.Add(core.SamplePointInUnitSphere(sampler.Get3D()).Multiply(radius / 2))
		ray := core.NewRay(origin, target.Subtract(origin).Normalize())

		got, gotHit := bvh.NearestHit(ray)
		want, wantHit := bvh.LinearHit(ray)
		if gotHit != wantHit || (gotHit && math.Abs(got.T-want.T) > 1e-9) {
			logger.Debugf("mismatch for ray %v: bvh %v at %f, linear %v at %f", ray, gotHit, got.T, wantHit, want.T)
			mismatches++
		}
	}
	return mismatches
}
