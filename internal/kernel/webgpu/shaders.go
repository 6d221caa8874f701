//go:build windows

package webgpu

// WGSL compute shaders for the pooling kernels.
// Using string constants instead of embed for simplicity.

// workgroupSize is the number of threads per workgroup.
const workgroupSize = 256

// poolForwardShader averages one adaptive window per thread. Window
// bounds follow start = a*in/out, end = ceil((a+1)*in/out).
const poolForwardShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    n: u32,
    c: u32,
    h: u32,
    w: u32,
    oh: u32,
    ow: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    let total = params.n * params.c * params.oh * params.ow;
    if (idx >= total) {
        return;
    }

    let ow_i = idx % params.ow;
    let oh_i = (idx / params.ow) % params.oh;
    let plane = idx / (params.ow * params.oh);

    let h0 = (oh_i * params.h) / params.oh;
    let h1 = ((oh_i + 1u) * params.h + params.oh - 1u) / params.oh;
    let w0 = (ow_i * params.w) / params.ow;
    let w1 = ((ow_i + 1u) * params.w + params.ow - 1u) / params.ow;

    var sum: f32 = 0.0;
    for (var ih: u32 = h0; ih < h1; ih = ih + 1u) {
        for (var iw: u32 = w0; iw < w1; iw = iw + 1u) {
            sum = sum + input[(plane * params.h + ih) * params.w + iw];
        }
    }

    let count = f32((h1 - h0) * (w1 - w0));
    result[idx] = sum / count;
}
`

// poolBackwardShader gathers, per input element, the contribution of
// every output window containing it and adds the total onto whatever
// gradient is already in the result buffer.
const poolBackwardShader = `
@group(0) @binding(0) var<storage, read> grad_output: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    n: u32,
    c: u32,
    h: u32,
    w: u32,
    oh: u32,
    ow: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    let total = params.n * params.c * params.h * params.w;
    if (idx >= total) {
        return;
    }

    let iw = idx % params.w;
    let ih = (idx / params.w) % params.h;
    let plane = idx / (params.w * params.h);

    var sum: f32 = 0.0;
    for (var oh: u32 = 0u; oh < params.oh; oh = oh + 1u) {
        let h0 = (oh * params.h) / params.oh;
        let h1 = ((oh + 1u) * params.h + params.oh - 1u) / params.oh;
        if (ih < h0 || ih >= h1) {
            continue;
        }
        for (var ow: u32 = 0u; ow < params.ow; ow = ow + 1u) {
            let w0 = (ow * params.w) / params.ow;
            let w1 = ((ow + 1u) * params.w + params.ow - 1u) / params.ow;
            if (iw < w0 || iw >= w1) {
                continue;
            }
            let area = f32((h1 - h0) * (w1 - w0));
            sum = sum + grad_output[(plane * params.oh + oh) * params.ow + ow] / area;
        }
    }

    result[idx] = result[idx] + sum;
}
`
