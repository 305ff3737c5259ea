// Package xsampling 提供事务级采样策略。
//
// xspan 在创建事务时调用 [Sampler.ShouldSample] 决定是否采样，
// 实现 [Rater] 的采样器还会把比率写入动态采样上下文（sample_rate）。
//
//   - [Always] / [Never]: 固定决策
//   - [NewRateSampler]: 固定比率随机采样
//   - [NewKeySampler]: 基于 key 的一致性采样（xxhash），xspan 以 trace_id 作为 key
//
// 一致性采样保证同一 trace_id 在所有服务中被一致地采样或丢弃，
// 上游已经给出采样决策时 xspan 直接沿用，不会调用采样器。
package xsampling
